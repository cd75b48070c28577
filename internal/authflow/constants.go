package authflow

import "time"

// PKCE parameters
const (
	VerifierLength  = 32 // random bytes before base64url encoding
	ChallengeMethod = "S256"
)

// State token parameters
const (
	// StateTTL bounds how long a redirect may dangle before the callback.
	// The state parameter is the whole session, so the TTL is the only
	// thing that expires an abandoned handshake.
	StateTTL = 10 * time.Minute

	stateSeparator = "."
)

// Token endpoint grant types
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// Log messages
const (
	LogMsgAuthorizationStarted   = "Authorization flow started"
	LogMsgAuthorizationCompleted = "Authorization code exchanged"
	LogMsgTokenRefreshed         = "Access token refreshed"
)
