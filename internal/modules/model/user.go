package model

import (
	"time"

	"github.com/taskroom/taskroom/internal/pkg/utils/secrets"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin  Role = "ADM"
	RoleMember Role = "MBR"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleMember:
		return "Member"
	}
	return string(r)
}

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"type:varchar(15);uniqueIndex;not null" json:"username"`
	Email     string `gorm:"type:varchar(254);index" json:"email"`
	Password  string `gorm:"type:varchar(128);not null" json:"-"`
	FirstName string `gorm:"type:varchar(150);not null;default:''" json:"first_name"`
	LastName  string `gorm:"type:varchar(150);not null;default:''" json:"last_name"`
	UserType  Role   `gorm:"type:varchar(3);not null;default:'ADM';check:user_type IN ('ADM','MBR')" json:"user_type"`

	DateJoined time.Time `gorm:"autoCreateTime" json:"date_joined"`

	// User <-> Notification
	Notifications []Notification `gorm:"foreignKey:NotificationReceiverID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.UserType == RoleAdmin }

// SetPassword always hashes raw and replaces the stored hash.
func (u *User) SetPassword(raw string) error {
	hash, err := secrets.HashPassword(raw)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

func (u *User) CheckPassword(raw string) bool {
	return secrets.VerifyPassword(u.Password, raw)
}
