package model

import "time"

// UserID identifies a user stored by airform
type UserID string

func (x UserID) String() string { return string(x) }

// User is an Airtable account that signed in to airform
type User struct {
	ID             UserID      `json:"id"`
	AirtableUserID string      `json:"airtableUserId"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	Tokens         OAuthTokens `json:"-"`
	LastLoginAt    time.Time   `json:"lastLoginAt"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// OAuthTokens are the Airtable credentials of a user. Tags keep them out of
// logs.
type OAuthTokens struct {
	AccessToken  string    `masq:"secret"`
	RefreshToken string    `masq:"secret"`
	ExpiresAt    time.Time
}

// HasAccessToken reports whether the user ever completed the OAuth flow
func (t OAuthTokens) HasAccessToken() bool {
	return t.AccessToken != ""
}
