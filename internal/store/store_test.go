package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ovenlog-backend/internal/db"
	"ovenlog-backend/internal/model"
)

func ptr[T any](v T) *T { return &v }

// newSqliteStore opens a migrated per-test in-memory database. The named
// shared-cache DSN keeps it alive across the pool's connections.
func newSqliteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return NewGormStore(gormDB)
}

// newMockStore wires the store over a sqlmock connection, for exercising
// query failure paths a real database cannot produce on demand.
func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	require.NoError(t, err)
	return NewGormStore(gormDB), mock
}

func seedEvent(t *testing.T, s Store, trakID, boxID, userID int64, in time.Time, out *time.Time) *model.OvenEvent {
	t.Helper()
	event := &model.OvenEvent{
		TrakID: trakID, BoxID: boxID, UserInID: userID,
		TimeIn: in, TimeOut: out,
		Temperature: 65, BakeHours: 2, Quantity: 1,
	}
	require.NoError(t, s.InsertOvenEvent(context.Background(), event))
	return event
}

func TestGormStore_CreateOrGetTrak(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	created, err := s.CreateOrGetTrak(ctx, "TRK01", "SN-1", "WO-1", nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	// A second scan of the same code returns the existing record untouched.
	again, err := s.CreateOrGetTrak(ctx, "TRK01", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "SN-1", again.SerialNumber)

	var count int64
	require.NoError(t, s.DB().Model(&model.Trak{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormStore_OpenEventUniqueness(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedEvent(t, s, 1, 1, 1, now, nil)

	// A second open event for the same trak hits the partial index.
	err := s.InsertOvenEvent(ctx, &model.OvenEvent{
		TrakID: 1, BoxID: 2, UserInID: 1, TimeIn: now,
		Temperature: 65, BakeHours: 2, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrDuplicateOpenEvent)

	// Closed events are not constrained.
	seedEvent(t, s, 1, 1, 1, now.Add(-24*time.Hour), ptr(now.Add(-22*time.Hour)))

	// A different trak can open freely.
	seedEvent(t, s, 2, 1, 1, now, nil)
}

func TestGormStore_FindOpenEventByTrak(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	open, err := s.FindOpenEventByTrak(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, open, "no open event is not an error")

	seedEvent(t, s, 1, 1, 1, now.Add(-24*time.Hour), ptr(now.Add(-22*time.Hour)))
	event := seedEvent(t, s, 1, 1, 1, now, nil)

	open, err = s.FindOpenEventByTrak(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, event.ID, open.ID)
}

func TestGormStore_UpdateOvenEvent(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	event := seedEvent(t, s, 1, 1, 1, now, nil)
	event.TimeOut = ptr(now.Add(2 * time.Hour))
	event.UserOutID = ptr(int64(2))
	require.NoError(t, s.UpdateOvenEvent(ctx, event))

	reloaded, err := s.FindEventByID(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.TimeOut)
	assert.Equal(t, int64(2), *reloaded.UserOutID)

	missing := &model.OvenEvent{ID: 9999, TimeOut: ptr(now)}
	assert.ErrorIs(t, s.UpdateOvenEvent(ctx, missing), ErrNotFound)
}

func TestGormStore_EventQueryOrdering(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	older := seedEvent(t, s, 1, 1, 1, now.Add(-3*time.Hour), nil)
	newer := seedEvent(t, s, 2, 1, 1, now.Add(-1*time.Hour), nil)

	open, err := s.QueryOpenEvents(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, older.ID, open[0].ID, "open events list oldest first")
	assert.Equal(t, newer.ID, open[1].ID)

	closed := seedEvent(t, s, 1, 1, 1, now.Add(-48*time.Hour), ptr(now.Add(-46*time.Hour)))
	history, err := s.QueryEventsByTrak(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, older.ID, history[0].ID, "history lists newest first")
	assert.Equal(t, closed.ID, history[1].ID)
}

func TestGormStore_QueryEventsInWindow(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	tooOld := seedEvent(t, s, 1, 1, 1, now.Add(-72*time.Hour), ptr(now.Add(-70*time.Hour)))
	outInWindow := seedEvent(t, s, 2, 1, 1, now.Add(-48*time.Hour), ptr(now.Add(-2*time.Hour)))
	inWindow := seedEvent(t, s, 3, 1, 1, now.Add(-1*time.Hour), nil)

	events, err := s.QueryEventsInWindow(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, inWindow.ID, events[0].ID)
	assert.Equal(t, outInWindow.ID, events[1].ID)
	for _, e := range events {
		assert.NotEqual(t, tooOld.ID, e.ID)
	}
}

func TestGormStore_ListAvailableTraks(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	baking, err := s.CreateOrGetTrak(ctx, "TRK01", "", "", nil)
	require.NoError(t, err)
	idle, err := s.CreateOrGetTrak(ctx, "TRK02", "", "", nil)
	require.NoError(t, err)
	done, err := s.CreateOrGetTrak(ctx, "TRK03", "", "", nil)
	require.NoError(t, err)

	seedEvent(t, s, baking.ID, 1, 1, now, nil)
	seedEvent(t, s, done.ID, 1, 1, now.Add(-24*time.Hour), ptr(now.Add(-22*time.Hour)))

	traks, err := s.ListAvailableTraks(ctx)
	require.NoError(t, err)

	codes := make([]string, len(traks))
	for i, trak := range traks {
		codes[i] = trak.TrakCode
	}
	assert.ElementsMatch(t, []string{idle.TrakCode, done.TrakCode}, codes)
}

func TestGormStore_FindLatestOnEvent(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	latest, err := s.FindLatestOnEvent(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, s.InsertOnEvent(ctx, &model.OnEvent{
		BoxID: 1, UserID: 1, IntendedStartTime: now, ActualRecordedTime: now.Add(-2 * time.Hour),
	}))
	second := &model.OnEvent{
		BoxID: 1, UserID: 1, IntendedStartTime: now, ActualRecordedTime: now.Add(-1 * time.Hour),
	}
	require.NoError(t, s.InsertOnEvent(ctx, second))
	require.NoError(t, s.InsertOnEvent(ctx, &model.OnEvent{
		BoxID: 2, UserID: 1, IntendedStartTime: now, ActualRecordedTime: now,
	}))

	latest, err = s.FindLatestOnEvent(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestGormStore_UserLookups(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	user := &model.User{FirstName: "Pat", LastName: "Chen", Login: "pchen", Badge: "1001"}
	require.NoError(t, s.DB().Create(user).Error)
	require.NoError(t, s.DB().Create(&model.UserAlias{
		Alias: "patc", UserName: "chen.pat", UserID: user.ID,
	}).Error)

	byLogin, err := s.FindUserByLogin(ctx, "pchen")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byLogin.ID)

	byAlias, err := s.FindUserByAlias(ctx, "patc")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byAlias.ID)

	byUserName, err := s.FindUserByAlias(ctx, "chen.pat")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUserName.ID)

	byBadge, err := s.FindUserByBadge(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byBadge.ID)

	_, err = s.FindUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindUserByAlias(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindUserByBadge(ctx, "0000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_BoxSelections(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	ids, err := s.ListBoxSelections(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, s.SaveBoxSelections(ctx, 1, []int64{1, 2, 3}))
	require.NoError(t, s.SaveBoxSelections(ctx, 2, []int64{4}))

	ids, err = s.ListBoxSelections(ctx, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3}, ids)

	// A save replaces the subset wholesale.
	require.NoError(t, s.SaveBoxSelections(ctx, 1, []int64{2}))
	ids, err = s.ListBoxSelections(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)

	// Clearing to empty is allowed and does not touch other users.
	require.NoError(t, s.SaveBoxSelections(ctx, 1, nil))
	ids, err = s.ListBoxSelections(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = s.ListBoxSelections(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids)
}

func TestGormStore_BarcodeLists(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	require.NoError(t, s.DB().Create(&model.Application{Name: "MB24", Barcode: ptr("APP-MB24")}).Error)
	require.NoError(t, s.DB().Create(&model.Application{Name: "NoBarcode"}).Error)
	require.NoError(t, s.DB().Create(&model.Application{Name: "Empty", Barcode: ptr("")}).Error)
	require.NoError(t, s.DB().Create(&model.StandardTime{Barcode: "TIME-1H", Hours: 1}).Error)

	apps, err := s.ListApplicationBarcodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"APP-MB24"}, apps, "null and empty barcodes are filtered")

	times, err := s.ListStandardTimeBarcodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"TIME-1H"}, times)

	app, err := s.FindApplicationByBarcode(ctx, "APP-MB24")
	require.NoError(t, err)
	assert.Equal(t, "MB24", app.Name)

	_, err = s.FindApplicationByBarcode(ctx, "APP-NOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	st, err := s.FindStandardTimeByBarcode(ctx, "TIME-1H")
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Hours)
}

// Scanners and label printers do not agree on letter case, so every
// scanned-code lookup must collate case-insensitively.
func TestGormStore_ScannedCodeLookupsIgnoreCase(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	trak, err := s.CreateOrGetTrak(ctx, "TRK500", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, s.DB().Create(&model.Box{ToolID: "OV-EAST", DefaultTemperature: 65}).Error)
	require.NoError(t, s.DB().Create(&model.Application{Name: "EC2", Barcode: ptr("APP-EC2")}).Error)
	require.NoError(t, s.DB().Create(&model.StandardTime{Barcode: "TIME-4H", Hours: 4}).Error)

	found, err := s.FindTrakByCode(ctx, "trk500")
	require.NoError(t, err)
	assert.Equal(t, trak.ID, found.ID)

	dup, err := s.CreateOrGetTrak(ctx, "trk500", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, trak.ID, dup.ID, "case variants must not enroll a second trak")

	box, err := s.FindBoxByToolID(ctx, "ov-east")
	require.NoError(t, err)
	assert.Equal(t, "OV-EAST", box.ToolID)

	app, err := s.FindApplicationByBarcode(ctx, "app-ec2")
	require.NoError(t, err)
	assert.Equal(t, "EC2", app.Name)

	st, err := s.FindStandardTimeByBarcode(ctx, "time-4h")
	require.NoError(t, err)
	assert.Equal(t, 4.0, st.Hours)
}

func TestGormStore_ListBoxes(t *testing.T) {
	s := newSqliteStore(t)
	ctx := context.Background()

	oven := &model.BoxType{Name: "Oven"}
	cart := &model.BoxType{Name: "Cart"}
	require.NoError(t, s.DB().Create(oven).Error)
	require.NoError(t, s.DB().Create(cart).Error)

	require.NoError(t, s.DB().Create(&model.Box{ToolID: "900001", DefaultTemperature: 65,
		LocationID: 1, ModelID: 1, BoxTypeID: oven.ID}).Error)
	require.NoError(t, s.DB().Create(&model.Box{ToolID: "100002", DefaultTemperature: 21,
		LocationID: 1, ModelID: 1, BoxTypeID: cart.ID}).Error)
	require.NoError(t, s.DB().Create(&model.Box{ToolID: "100001", DefaultTemperature: 65,
		LocationID: 1, ModelID: 1, BoxTypeID: oven.ID}).Error)

	boxes, err := s.ListBoxes(ctx)
	require.NoError(t, err)
	require.Len(t, boxes, 3)

	// Sorted by type name, then tool id.
	assert.Equal(t, "100002", boxes[0].ToolID)
	assert.Equal(t, "100001", boxes[1].ToolID)
	assert.Equal(t, "900001", boxes[2].ToolID)
	assert.Equal(t, "Oven", boxes[1].BoxType.Name)

	toolIDs, err := s.ListBoxToolIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"100001", "100002", "900001"}, toolIDs)
}

func TestGormStore_FindTrakByID_TranslatesNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "traks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trak_code"}))

	_, err := s.FindTrakByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListBoxToolIDs_PropagatesQueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT "tool_id" FROM "boxes"`).
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := s.ListBoxToolIDs(context.Background())
	assert.EqualError(t, err, "connection reset")
}
