package domain

import "time"

// CredentialBundle is the OAuth token set for the bot's platform account.
// Exactly one bundle is current at any time; the refresh path replaces it
// wholesale, never field by field. Never persisted or logged in plaintext.
type CredentialBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ObtainedAt   time.Time `json:"obtained_at"`
	ExpiresIn    int64     `json:"expires_in"` // seconds, relative to ObtainedAt
}

// ExpiresAt returns the absolute expiry of the access token.
func (b CredentialBundle) ExpiresAt() time.Time {
	return b.ObtainedAt.Add(time.Duration(b.ExpiresIn) * time.Second)
}

// ExpiredBy reports whether the access token is expired at the given instant,
// applying a safety skew so callers refresh slightly before the real deadline.
func (b CredentialBundle) ExpiredBy(now time.Time, skew time.Duration) bool {
	return !now.Before(b.ExpiresAt().Add(-skew))
}
