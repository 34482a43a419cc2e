package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Email     string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string  `gorm:"size:255;not null" json:"-"`
	FirstName string  `gorm:"size:100;not null" json:"firstName"`
	LastName  string  `gorm:"size:100;not null" json:"lastName"`
	Phone     *string `gorm:"size:20" json:"phone"`

	EmailNotifications bool `gorm:"not null;default:true" json:"emailNotifications"`
	EventUpdates       bool `gorm:"not null;default:true" json:"eventUpdates"`

	PayPalEmail     *string `gorm:"column:paypal_email;size:255" json:"paypalEmail"`
	PayPalAccountID *string `gorm:"column:paypal_account_id;size:255" json:"paypalAccountId"`

	IsActive   bool `gorm:"not null;default:true" json:"isActive"`
	IsVerified bool `gorm:"not null;default:false" json:"isVerified"`

	VerificationToken    *string    `gorm:"size:255" json:"-"`
	ResetPasswordToken   *string    `gorm:"size:255" json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// SetPassword hashes and stores the given password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether the candidate matches the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}
