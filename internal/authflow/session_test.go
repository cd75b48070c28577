package authflow

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/MentionBot_Go/internal/domain"
)

func newTestSession(t *testing.T, tokenURL string) *session {
	t.Helper()
	return &session{
		clientID:    "client-1",
		redirectURL: "http://localhost:8080/auth/callback",
		scopes:      "read write",
		endpoints: Endpoints{
			AuthorizeURL: "https://provider.example/oauth/authorize",
			TokenURL:     tokenURL,
		},
		signingKey: testSigningKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		now:        time.Now,
	}
}

func TestBeginAuthorization_URLShape(t *testing.T) {
	s := newTestSession(t, "https://provider.example/oauth/token")

	raw, err := s.BeginAuthorization()
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", parsed.Scheme)
	assert.Equal(t, "/oauth/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, ChallengeMethod, q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.NotEmpty(t, q.Get("state"))

	// The state must verify under the same key and carry a verifier matching
	// the challenge in the URL.
	verifier, err := verifyStateToken(s.signingKey, q.Get("state"), time.Now())
	require.NoError(t, err)
	sum := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), q.Get("code_challenge"))
}

func TestBeginAuthorization_FreshVerifierPerCall(t *testing.T) {
	s := newTestSession(t, "https://provider.example/oauth/token")

	first, err := s.BeginAuthorization()
	require.NoError(t, err)
	second, err := s.BeginAuthorization()
	require.NoError(t, err)

	firstURL, _ := url.Parse(first)
	secondURL, _ := url.Parse(second)
	assert.NotEqual(t,
		firstURL.Query().Get("code_challenge"),
		secondURL.Query().Get("code_challenge"))
}

func TestCompleteAuthorization_ExchangesCode(t *testing.T) {
	var gotForm url.Values
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer provider.Close()

	s := newTestSession(t, provider.URL)
	state, err := mintStateToken(s.signingKey, "pkce-verifier", time.Now())
	require.NoError(t, err)

	bundle, err := s.CompleteAuthorization(context.Background(), "auth-code", state)
	require.NoError(t, err)

	assert.Equal(t, "new-access", bundle.AccessToken)
	assert.Equal(t, "new-refresh", bundle.RefreshToken)
	assert.Equal(t, int64(3600), bundle.ExpiresIn)
	assert.WithinDuration(t, time.Now(), bundle.ObtainedAt, 5*time.Second)

	assert.Equal(t, GrantAuthorizationCode, gotForm.Get("grant_type"))
	assert.Equal(t, "auth-code", gotForm.Get("code"))
	assert.Equal(t, "pkce-verifier", gotForm.Get("code_verifier"))
}

func TestCompleteAuthorization_RejectsBadState(t *testing.T) {
	s := newTestSession(t, "https://provider.example/oauth/token")

	_, err := s.CompleteAuthorization(context.Background(), "code", "forged.state")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCompleteAuthorization_RejectsExpiredState(t *testing.T) {
	s := newTestSession(t, "https://provider.example/oauth/token")
	state, err := mintStateToken(s.signingKey, "v", time.Now().Add(-StateTTL-time.Minute))
	require.NoError(t, err)

	_, err = s.CompleteAuthorization(context.Background(), "code", state)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRefresh_ReplacesBundle(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, GrantRefreshToken, r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "rotated-access",
			"refresh_token": "rotated-refresh",
			"token_type":    "Bearer",
			"expires_in":    7200,
		})
	}))
	defer provider.Close()

	s := newTestSession(t, provider.URL)
	old := domain.CredentialBundle{AccessToken: "old-access", RefreshToken: "old-refresh"}

	fresh, err := s.Refresh(context.Background(), old)
	require.NoError(t, err)
	assert.Equal(t, "rotated-access", fresh.AccessToken)
	assert.Equal(t, "rotated-refresh", fresh.RefreshToken)
}

func TestRefresh_KeepsOldRefreshTokenWhenOmitted(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "rotated-access",
			"token_type":   "Bearer",
			"expires_in":   7200,
		})
	}))
	defer provider.Close()

	s := newTestSession(t, provider.URL)
	fresh, err := s.Refresh(context.Background(), domain.CredentialBundle{RefreshToken: "sticky-refresh"})
	require.NoError(t, err)
	assert.Equal(t, "sticky-refresh", fresh.RefreshToken)
}

func TestRefresh_RejectionIsTerminal(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer provider.Close()

	s := newTestSession(t, provider.URL)
	_, err := s.Refresh(context.Background(), domain.CredentialBundle{RefreshToken: "dead"})
	assert.ErrorIs(t, err, domain.ErrRefreshFailed)
}

func TestRefresh_ServerErrorIsNotTerminal(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer provider.Close()

	s := newTestSession(t, provider.URL)
	_, err := s.Refresh(context.Background(), domain.CredentialBundle{RefreshToken: "maybe-alive"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRefreshFailed)
}
