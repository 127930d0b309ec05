package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/domain/model/auth"
	"github.com/secmon-lab/airform/pkg/service/airtable"
	"github.com/secmon-lab/airform/pkg/usecase"
	"github.com/secmon-lab/airform/pkg/utils/errutil"
)

type AuthUseCase = usecase.AuthUseCaseInterface

const (
	cookieOAuthState    = "oauth_state"
	cookieOAuthVerifier = "oauth_verifier"
	oauthCookieMaxAge   = 600 // 10 minutes
)

type userMeResponse struct {
	ID    string `json:"id"`
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// generateState generates a random state parameter for OAuth
func generateState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", goerr.Wrap(err, "failed to generate random state")
	}
	return hex.EncodeToString(bytes), nil
}

func setCookie(w http.ResponseWriter, r *http.Request, c *http.Cookie) {
	c.Path = "/"
	c.HttpOnly = true
	c.Secure = r.TLS != nil
	c.SameSite = http.SameSiteLaxMode
	http.SetCookie(w, c)
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	setCookie(w, r, &http.Cookie{Name: name, MaxAge: -1})
}

// authLoginHandler starts the Airtable OAuth flow
func authLoginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authUC.IsNoAuthn() {
			http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
			return
		}

		state, err := generateState()
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		verifier := airtable.NewVerifier()

		// state and verifier live in short cookies until the callback
		setCookie(w, r, &http.Cookie{Name: cookieOAuthState, Value: state, MaxAge: oauthCookieMaxAge})
		setCookie(w, r, &http.Cookie{Name: cookieOAuthVerifier, Value: verifier, MaxAge: oauthCookieMaxAge})

		http.Redirect(w, r, authUC.GetAuthURL(state, verifier), http.StatusTemporaryRedirect)
	}
}

// authCallbackHandler finishes the OAuth flow and sets the session cookies
func authCallbackHandler(authUC AuthUseCase, frontendURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stateCookie, err := r.Cookie(cookieOAuthState)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "missing OAuth state"), http.StatusBadRequest)
			return
		}

		query := r.URL.Query()
		state := query.Get("state")
		if state == "" || state != stateCookie.Value {
			errutil.HandleHTTP(r.Context(), w, goerr.New("invalid state parameter"), http.StatusBadRequest)
			return
		}

		if oauthErr := query.Get("error"); oauthErr != "" {
			errutil.HandleHTTP(r.Context(), w,
				goerr.New("authorization was denied", goerr.V("error", oauthErr), goerr.V("description", query.Get("error_description"))),
				http.StatusBadRequest)
			return
		}

		verifierCookie, err := r.Cookie(cookieOAuthVerifier)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "missing PKCE verifier"), http.StatusBadRequest)
			return
		}

		clearCookie(w, r, cookieOAuthState)
		clearCookie(w, r, cookieOAuthVerifier)

		token, err := authUC.HandleCallback(r.Context(), query.Get("code"), verifierCookie.Value)
		if err != nil {
			handleError(w, r, err)
			return
		}

		setCookie(w, r, &http.Cookie{Name: cookieTokenID, Value: token.ID.String(), Expires: token.ExpiresAt})
		setCookie(w, r, &http.Cookie{Name: cookieTokenSecret, Value: token.Secret.String(), Expires: token.ExpiresAt})

		http.Redirect(w, r, strings.TrimRight(frontendURL, "/")+"/dashboard", http.StatusTemporaryRedirect)
	}
}

// authLogoutHandler handles user logout
func authLogoutHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tokenIDCookie, err := r.Cookie(cookieTokenID); err == nil {
			tokenID := auth.TokenID(tokenIDCookie.Value)
			if err := authUC.Logout(r.Context(), tokenID); err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to logout"), http.StatusInternalServerError)
				return
			}
		}

		clearCookie(w, r, cookieTokenID)
		clearCookie(w, r, cookieTokenSecret)

		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// authMeHandler returns the signed in user
func authMeHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var tokenID auth.TokenID
		var tokenSecret auth.TokenSecret
		if !authUC.IsNoAuthn() {
			tokenIDCookie, err := r.Cookie(cookieTokenID)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "Login required")
				return
			}
			tokenSecretCookie, err := r.Cookie(cookieTokenSecret)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "Login required")
				return
			}
			tokenID = auth.TokenID(tokenIDCookie.Value)
			tokenSecret = auth.TokenSecret(tokenSecretCookie.Value)
		}

		token, err := authUC.ValidateToken(r.Context(), tokenID, tokenSecret)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
			ID:    token.UserID.String(),
			Sub:   token.Sub,
			Email: token.Email,
			Name:  token.Name,
		})
	}
}
