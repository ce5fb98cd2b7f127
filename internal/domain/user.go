package domain

import (
	"strings"
	"time"

	"github.com/dom/videotube-identity/internal/credential"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key"`
	Username      string                         `json:"username" gorm:"uniqueIndex;not null"`
	Email         string                         `json:"email" gorm:"uniqueIndex;not null"`
	Fullname      string                         `json:"fullname" gorm:"index;not null"`
	AvatarURL     string                         `json:"avatar" gorm:"not null"`
	CoverImageURL string                         `json:"coverImage"`
	WatchHistory  datatypes.JSONSlice[uuid.UUID] `json:"watchHistory"`
	PasswordHash  string                         `json:"-" gorm:"not null"`
	CreatedAt     time.Time                      `json:"createdAt"`
	UpdatedAt     time.Time                      `json:"updatedAt"`

	// staged plaintext, hashed and cleared by BeforeSave
	pendingPassword string
	hasher          credential.Hasher
}

// SetPassword stages a new password. It is hashed with h (or a default bcrypt
// hasher when h is nil) the next time the user is saved, so unrelated updates
// never rehash.
func (u *User) SetPassword(plain string, h credential.Hasher) {
	u.pendingPassword = plain
	u.hasher = h
}

// HasPendingPassword reports whether a staged password is waiting to be hashed.
func (u *User) HasPendingPassword() bool {
	return u.pendingPassword != ""
}

// Normalize trims identity fields and folds username and email to lowercase.
func (u *User) Normalize() {
	u.Username = NormalizeHandle(u.Username)
	u.Email = NormalizeHandle(u.Email)
	u.Fullname = strings.TrimSpace(u.Fullname)
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.WatchHistory == nil {
		u.WatchHistory = datatypes.JSONSlice[uuid.UUID]{}
	}
	if strings.TrimSpace(u.AvatarURL) == "" {
		return ErrAvatarRequired
	}
	if u.PasswordHash == "" && u.pendingPassword == "" {
		return ErrPasswordRequired
	}
	return nil
}

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Normalize()
	return u.HashPendingPassword()
}

// HashPendingPassword moves a staged password into PasswordHash.
// It is a no-op when nothing is staged.
func (u *User) HashPendingPassword() error {
	if u.pendingPassword == "" {
		return nil
	}

	h := u.hasher
	if h == nil {
		h = credential.NewBcryptHasher(credential.DefaultCost)
	}
	hash, err := h.Hash(u.pendingPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.pendingPassword = ""
	return nil
}

// NormalizeHandle is the case folding applied to usernames and emails.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UserSession is the server-side reference for an issued refresh token.
// Only a hash of the token is stored.
type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID           uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
