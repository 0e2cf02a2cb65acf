package model

// User is an operator identity. Aliases map alternate login names to the
// same record.
type User struct {
	ID             int64  `gorm:"primaryKey" json:"id"`
	FirstName      string `gorm:"size:64;not null" json:"firstName"`
	MiddleName     string `gorm:"size:64" json:"middleName,omitempty"`
	LastName       string `gorm:"size:64;not null" json:"lastName"`
	Badge          string `gorm:"uniqueIndex;size:32" json:"badge"`
	Login          string `gorm:"uniqueIndex;size:64" json:"login"`
	IsActive       bool   `gorm:"not null;default:true" json:"isActive"`
	DedicatedBoxID *int64 `json:"dedicatedBoxId,omitempty"`

	// Associations
	DedicatedBox *Box        `json:"dedicatedBox,omitempty"`
	Aliases      []UserAlias `json:"aliases,omitempty"`
}

// FullName joins the name parts, skipping an empty middle name.
func (u *User) FullName() string {
	if u.MiddleName == "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName + " " + u.MiddleName + " " + u.LastName
}

// UserAlias is an alternate login or display name resolving to a user.
type UserAlias struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Alias    string `gorm:"index;size:64;not null" json:"alias"`
	UserName string `gorm:"index;size:64;not null" json:"userName"`
	UserID   int64  `gorm:"index;not null" json:"userId"`

	// Associations
	User User `json:"-"`
}

// UserBoxSelection is one entry of a user's preferred box subset. An empty
// selection means the user sees every box.
type UserBoxSelection struct {
	ID     int64 `gorm:"primaryKey" json:"id"`
	UserID int64 `gorm:"index;not null" json:"userId"`
	BoxID  int64 `gorm:"not null" json:"boxId"`
}
