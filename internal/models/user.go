package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User é o registro de credenciais. PasswordHash nunca é serializado.
type User struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string     `gorm:"size:255;not null" json:"name"`
	Email               string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash        string     `gorm:"size:255;not null" json:"-"`
	ResetPasswordToken  *string    `gorm:"size:64;index" json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return
}

// NormalizeEmail trims and lower-cases an address; emails are stored and looked up in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword replaces the stored hash. It is the only path that re-hashes,
// so saving a user for other reasons never touches PasswordHash.
func (user *User) SetPassword(plaintext string, hash func(string) (string, error)) error {
	digest, err := hash(plaintext)
	if err != nil {
		return err
	}
	user.PasswordHash = digest
	return nil
}

// SetResetToken stores the hash of a reset secret and its expiry, replacing any earlier one.
func (user *User) SetResetToken(tokenHash string, expiresAt time.Time) {
	user.ResetPasswordToken = &tokenHash
	user.ResetPasswordExpire = &expiresAt
}

// ClearResetToken drops both reset fields together.
func (user *User) ClearResetToken() {
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil
}

// HasValidResetToken reports whether tokenHash matches the stored hash and has not expired at now.
func (user *User) HasValidResetToken(tokenHash string, now time.Time) bool {
	if user.ResetPasswordToken == nil || user.ResetPasswordExpire == nil {
		return false
	}
	return *user.ResetPasswordToken == tokenHash && user.ResetPasswordExpire.After(now)
}

// PublicUser é a projeção devolvida por register, login e reset.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Token string    `json:"token"`
}

func (user *User) Public(token string) PublicUser {
	return PublicUser{ID: user.ID, Name: user.Name, Email: user.Email, Token: token}
}
