// Package directory resolves operator identities from logins and badges.
package directory

import (
	"context"
	"errors"

	"ovenlog-backend/internal/model"
	"ovenlog-backend/internal/store"
)

// Directory looks up users, falling back to alias records for alternate
// login names.
type Directory struct {
	store store.Store
}

// New creates a directory over the store.
func New(s store.Store) *Directory {
	return &Directory{store: s}
}

// ResolveByLogin finds the user for a login name, checking alias records
// before giving up. Returns (nil, nil) when nothing matches.
func (d *Directory) ResolveByLogin(ctx context.Context, login string) (*model.User, error) {
	user, err := d.store.FindUserByLogin(ctx, login)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user, err = d.store.FindUserByAlias(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResolveByBadge finds the user for a badge number. Returns (nil, nil)
// when nothing matches.
func (d *Directory) ResolveByBadge(ctx context.Context, badge string) (*model.User, error) {
	user, err := d.store.FindUserByBadge(ctx, badge)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
