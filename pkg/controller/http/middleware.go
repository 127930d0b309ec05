package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/airform/pkg/domain/model/auth"
)

const (
	cookieTokenID     = "token_id"
	cookieTokenSecret = "token_secret"
)

// authMiddleware validates the session cookies of protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authUC == nil {
				writeError(w, r, http.StatusUnauthorized, "Login required")
				return
			}

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
				writeError(w, r, http.StatusUnauthorized, "Invalid authentication token")
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// corsMiddleware lets the form builder origin call the API with cookies
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	origin = strings.TrimRight(origin, "/")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Origin") == origin {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")

				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
					if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
						h.Set("Access-Control-Allow-Headers", reqHeaders)
					}
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
