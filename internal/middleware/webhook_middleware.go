package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lending-service/configs"
	"lending-service/pkg/crypto"
	"lending-service/pkg/utils"
)

// WebhookAuthMiddleware authenticates gateway callbacks. When an
// introspection URL is configured the bearer token is verified against the
// external token service; otherwise it is checked against the locally stored
// digest.
func WebhookAuthMiddleware(cfg configs.WebhookConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			if cfg.IntrospectionURL != "" {
				if !introspectToken(cfg.IntrospectionURL, token) {
					utils.RespondWithError(w, http.StatusUnauthorized, "token rejected")
					return
				}
			} else if !crypto.CheckToken(token, cfg.TokenDigest) {
				utils.RespondWithError(w, http.StatusUnauthorized, "token rejected")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// introspectToken asks the external token service whether the token is active
func introspectToken(introspectionURL, token string) bool {
	form := url.Values{}
	form.Set("token", token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.PostForm(introspectionURL, form)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	return result.Active
}
