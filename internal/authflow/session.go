package authflow

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osse101/MentionBot_Go/internal/domain"
	"github.com/osse101/MentionBot_Go/internal/logger"
)

// Session runs the OAuth2 authorization-code-with-PKCE handshake against the
// platform and exchanges refresh tokens for new bundles. It keeps no
// per-handshake state: the signed state token carries the verifier.
type Session interface {
	// BeginAuthorization generates a fresh PKCE pair, mints the signed state
	// token, and returns the provider authorization URL to redirect to.
	BeginAuthorization() (string, error)

	// CompleteAuthorization verifies the state token, recovers the verifier,
	// and exchanges code + verifier for a credential bundle. The caller is
	// responsible for vaulting the result.
	CompleteAuthorization(ctx context.Context, code, state string) (domain.CredentialBundle, error)

	// Refresh exchanges the bundle's refresh token for a new bundle.
	// A rejection is terminal: the caller must require re-authorization.
	Refresh(ctx context.Context, bundle domain.CredentialBundle) (domain.CredentialBundle, error)
}

// Endpoints identifies the provider's OAuth2 surface.
type Endpoints struct {
	AuthorizeURL string
	TokenURL     string
}

type session struct {
	clientID    string
	redirectURL string
	scopes      string
	endpoints   Endpoints
	signingKey  []byte
	httpClient  *http.Client
	now         func() time.Time
}

// NewSession creates an authorization session. A nil httpClient gets a
// sensible default timeout.
func NewSession(clientID, redirectURL, scopes string, endpoints Endpoints, signingKey []byte, httpClient *http.Client) Session {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &session{
		clientID:    clientID,
		redirectURL: redirectURL,
		scopes:      scopes,
		endpoints:   endpoints,
		signingKey:  signingKey,
		httpClient:  httpClient,
		now:         time.Now,
	}
}

func (s *session) BeginAuthorization() (string, error) {
	verifier, err := generateVerifier()
	if err != nil {
		return "", fmt.Errorf("generate verifier: %w", err)
	}

	state, err := mintStateToken(s.signingKey, verifier, s.now())
	if err != nil {
		return "", fmt.Errorf("mint state token: %w", err)
	}

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURL)
	params.Set("scope", s.scopes)
	params.Set("state", state)
	params.Set("code_challenge", deriveChallenge(verifier))
	params.Set("code_challenge_method", ChallengeMethod)

	return s.endpoints.AuthorizeURL + "?" + params.Encode(), nil
}

func (s *session) CompleteAuthorization(ctx context.Context, code, state string) (domain.CredentialBundle, error) {
	verifier, err := verifyStateToken(s.signingKey, state, s.now())
	if err != nil {
		return domain.CredentialBundle{}, err
	}

	form := url.Values{}
	form.Set("grant_type", GrantAuthorizationCode)
	form.Set("code", code)
	form.Set("redirect_uri", s.redirectURL)
	form.Set("client_id", s.clientID)
	form.Set("code_verifier", verifier)

	bundle, err := s.tokenRequest(ctx, form)
	if err != nil {
		return domain.CredentialBundle{}, fmt.Errorf("code exchange: %w", err)
	}

	logger.FromContext(ctx).Info(LogMsgAuthorizationCompleted)
	return bundle, nil
}

func (s *session) Refresh(ctx context.Context, bundle domain.CredentialBundle) (domain.CredentialBundle, error) {
	form := url.Values{}
	form.Set("grant_type", GrantRefreshToken)
	form.Set("refresh_token", bundle.RefreshToken)
	form.Set("client_id", s.clientID)

	refreshed, err := s.tokenRequest(ctx, form)
	if err != nil {
		var remoteErr domain.RemoteRequestError
		if errors.As(err, &remoteErr) && remoteErr.StatusCode >= 400 && remoteErr.StatusCode < 500 {
			// The stored refresh token is dead. Retrying cannot help.
			return domain.CredentialBundle{}, fmt.Errorf("%w: status %d", domain.ErrRefreshFailed, remoteErr.StatusCode)
		}
		return domain.CredentialBundle{}, fmt.Errorf("refresh: %w", err)
	}

	// Some providers omit the refresh token on rotation; keep the old one.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = bundle.RefreshToken
	}

	logger.FromContext(ctx).Info(LogMsgTokenRefreshed)
	return refreshed, nil
}

// tokenResponse mirrors the provider's token endpoint body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *session) tokenRequest(ctx context.Context, form url.Values) (domain.CredentialBundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoints.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.CredentialBundle{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.CredentialBundle{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.CredentialBundle{}, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.CredentialBundle{}, domain.RemoteRequestError{
			StatusCode: resp.StatusCode,
			Message:    "token endpoint rejected request",
		}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return domain.CredentialBundle{}, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return domain.CredentialBundle{}, fmt.Errorf("token response missing access_token")
	}

	return domain.CredentialBundle{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ObtainedAt:   s.now().UTC(),
		ExpiresIn:    token.ExpiresIn,
	}, nil
}

// generateVerifier produces a PKCE code verifier: base64url of 32 random bytes.
func generateVerifier() (string, error) {
	raw := make([]byte, VerifierLength)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// deriveChallenge applies the S256 transform to a verifier.
func deriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
