package domain

import (
	"net/mail"
	"strings"
	"time"
)

// User is created on the first successful identity exchange. Only the display
// name and photo change afterwards, refreshed on later logins.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:320;uniqueIndex;not null" json:"email"`
	Photo     string    `gorm:"size:1024" json:"photo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IdentityClaims are the verified facts an identity provider vouches for.
type IdentityClaims struct {
	Email string
	Name  string
	Photo string
}

// NormalizeEmail lowercases and trims an address; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail reports whether two addresses name the same identity.
func SameEmail(a, b string) bool {
	a, b = NormalizeEmail(a), NormalizeEmail(b)
	return a != "" && a == b
}

// Normalize validates claims and returns them in canonical form.
func (c IdentityClaims) Normalize() (IdentityClaims, error) {
	email := NormalizeEmail(c.Email)
	if email == "" {
		return IdentityClaims{}, NewError(KindInvalidCredential, "identity assertion has no email", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return IdentityClaims{}, NewError(KindInvalidCredential, "identity assertion has a malformed email", err)
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "User"
	}
	return IdentityClaims{Email: email, Name: name, Photo: strings.TrimSpace(c.Photo)}, nil
}
