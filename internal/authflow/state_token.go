package authflow

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

// statePayload is what the state parameter carries. The PKCE verifier rides
// inside the token instead of a server-side session map, so the process can
// be restarted (or horizontally scaled) between redirect and callback.
type statePayload struct {
	Verifier string    `json:"verifier"`
	IssuedAt time.Time `json:"issued_at"`
}

// mintStateToken signs the payload and packs it into one opaque string:
// base64url(payload) "." base64url(HMAC-SHA256(key, payload)).
func mintStateToken(key []byte, verifier string, issuedAt time.Time) (string, error) {
	payload, err := json.Marshal(statePayload{Verifier: verifier, IssuedAt: issuedAt})
	if err != nil {
		return "", fmt.Errorf("encode state payload: %w", err)
	}
	mac := computeMAC(key, payload)
	return base64.RawURLEncoding.EncodeToString(payload) +
		stateSeparator +
		base64.RawURLEncoding.EncodeToString(mac), nil
}

// verifyStateToken authenticates and decodes a state token, returning the
// embedded PKCE verifier. Bad encoding, a signature mismatch, or an issuance
// older than StateTTL all fail with ErrInvalidState.
func verifyStateToken(key []byte, token string, now time.Time) (string, error) {
	encPayload, encMAC, found := strings.Cut(token, stateSeparator)
	if !found {
		return "", fmt.Errorf("%w: malformed token", domain.ErrInvalidState)
	}

	payload, err := base64.RawURLEncoding.DecodeString(encPayload)
	if err != nil {
		return "", fmt.Errorf("%w: bad payload encoding", domain.ErrInvalidState)
	}
	mac, err := base64.RawURLEncoding.DecodeString(encMAC)
	if err != nil {
		return "", fmt.Errorf("%w: bad signature encoding", domain.ErrInvalidState)
	}

	// hmac.Equal is constant-time
	if !hmac.Equal(mac, computeMAC(key, payload)) {
		return "", fmt.Errorf("%w: signature mismatch", domain.ErrInvalidState)
	}

	var decoded statePayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("%w: bad payload", domain.ErrInvalidState)
	}
	if decoded.Verifier == "" {
		return "", fmt.Errorf("%w: empty verifier", domain.ErrInvalidState)
	}
	if now.Sub(decoded.IssuedAt) > StateTTL {
		return "", fmt.Errorf("%w: token expired", domain.ErrInvalidState)
	}

	return decoded.Verifier, nil
}

func computeMAC(key, payload []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(payload)
	return mac.Sum(nil)
}
