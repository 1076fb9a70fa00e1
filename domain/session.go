package domain

import "time"

// Session is a bearer credential plus the user snapshot it was issued for.
// It is re-derivable by authenticating again and is never stored server-side.
type Session struct {
	Token    string    `json:"token"`
	User     User      `json:"user"`
	IssuedAt time.Time `json:"issuedAt"`
}

// Active reports whether the session carries a token.
func (s Session) Active() bool {
	return s.Token != ""
}

// TokenClaims is what a verified session token says about its bearer.
type TokenClaims struct {
	UserID   string
	Email    string
	Name     string
	IssuedAt time.Time
}
