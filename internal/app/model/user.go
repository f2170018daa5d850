package model

import (
	"time"

	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	Cart         Cart           `gorm:"type:text;serializer:json" json:"cart"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Password is the plaintext set on registration or password change.
	// BeforeSave turns it into PasswordHash and clears it; it is never stored.
	Password string `gorm:"-" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeSave hashes Password when a new plaintext value has been assigned.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password == "" {
		return nil
	}
	hash, err := util.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Password = ""
	return nil
}

// MatchPassword compares a plaintext password against the stored hash.
func (u *User) MatchPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return util.VerifyPassword(u.PasswordHash, password)
}

// PublicUser is the projection returned to clients after register and login.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Cart  Cart   `json:"cart"`
}

func (u *User) Public() PublicUser {
	cart := u.Cart
	if cart == nil {
		cart = Cart{}
	}
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Cart:  cart,
	}
}
