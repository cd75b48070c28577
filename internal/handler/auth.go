package handler

import (
	"net/http"
	"time"

	"github.com/osse101/MentionBot_Go/internal/authflow"
	"github.com/osse101/MentionBot_Go/internal/checkpoint"
	"github.com/osse101/MentionBot_Go/internal/engine"
	"github.com/osse101/MentionBot_Go/internal/logger"
	"github.com/osse101/MentionBot_Go/internal/vault"
)

// AuthStatusResponse reports whether vaulted credentials exist.
// Token material itself is never exposed over HTTP.
type AuthStatusResponse struct {
	Present bool `json:"present"`
}

// AuthProbeResponse reports the result of a decryption probe against the vault.
type AuthProbeResponse struct {
	OK        bool       `json:"ok"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// AuthResetResponse reports which stored artifacts a reset removed.
type AuthResetResponse struct {
	CredentialsErased bool `json:"credentials_erased"`
	CheckpointErased  bool `json:"checkpoint_erased"`
}

// HandleAuthBegin starts the authorization flow by redirecting the browser to
// the provider's consent page. The PKCE verifier travels inside the signed
// state parameter, so no server-side session is needed.
func HandleAuthBegin(session authflow.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorizeURL, err := session.BeginAuthorization()
		if err != nil {
			logger.FromContext(r.Context()).Error(LogMsgAuthBeginFailed, "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
			return
		}

		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}

// HandleAuthCallback completes the flow: verify the signed state, exchange the
// code, and seal the resulting bundle into the vault. On success any terminal
// auth condition on the engine is cleared so scheduling resumes.
func HandleAuthCallback(session authflow.Session, credVault *vault.Vault, passphrase string, eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if errParam := r.URL.Query().Get("error"); errParam != "" {
			log.Warn(LogMsgAuthDenied, "provider_error", errParam)
			respondError(w, http.StatusBadRequest, ErrMsgAuthDenied)
			return
		}

		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		bundle, err := session.CompleteAuthorization(r.Context(), code, state)
		if err != nil {
			log.Warn(LogMsgAuthCallbackFailed, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		if err := credVault.Save(bundle, passphrase); err != nil {
			log.Error(LogMsgVaultSaveFailed, "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
			return
		}

		eng.ClearAuthTerminal()
		log.Info(LogMsgAuthCompleted)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Authorization complete. Credentials stored."})
	}
}

// HandleAuthStatus reports whether an encrypted bundle is on disk.
// It does not attempt decryption; use the probe endpoint for that.
func HandleAuthStatus(credVault *vault.Vault) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, AuthStatusResponse{Present: credVault.Exists()})
	}
}

// HandleAuthProbe decrypts the stored bundle to verify the vault passphrase
// still opens it. The decrypted material stays server-side; only the expiry
// timestamp is reported.
func HandleAuthProbe(credVault *vault.Vault, passphrase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, err := credVault.Load(passphrase)
		if err != nil {
			logger.FromContext(r.Context()).Warn(LogMsgProbeFailed, "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		expiresAt := bundle.ExpiresAt()
		respondJSON(w, http.StatusOK, AuthProbeResponse{OK: true, ExpiresAt: &expiresAt})
	}
}

// HandleAuthReset erases the credential vault and the ingestion checkpoint.
// Requires confirm=true; there is no undo.
func HandleAuthReset(credVault *vault.Vault, cpStore *checkpoint.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if r.URL.Query().Get("confirm") != "true" {
			respondError(w, http.StatusBadRequest, ErrMsgConfirmRequired)
			return
		}

		credsErased, err := credVault.Erase()
		if err != nil {
			log.Error(LogMsgResetFailed, "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
			return
		}

		cpErased, err := cpStore.Reset()
		if err != nil {
			log.Error(LogMsgResetFailed, "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
			return
		}

		log.Info(LogMsgResetDone, "credentials_erased", credsErased, "checkpoint_erased", cpErased)
		respondJSON(w, http.StatusOK, AuthResetResponse{
			CredentialsErased: credsErased,
			CheckpointErased:  cpErased,
		})
	}
}
