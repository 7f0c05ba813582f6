// Package auth resolves relay connections to authenticated users.
package auth

import (
	"net/http"
	"strings"

	"github.com/MariaBraganca/immobyte/internal/domain"
	"github.com/MariaBraganca/immobyte/internal/store"
)

// Authenticator supplies the opaque authenticated user for a request.
type Authenticator interface {
	Authenticate(r *http.Request) (domain.User, bool)
}

// TokenAuthenticator maps static bearer tokens to user records.
type TokenAuthenticator struct {
	tokens map[string]string // token -> user_id
	store  store.Store
}

// NewTokenAuthenticator parses "token=user_id[,token=user_id]" pairs.
func NewTokenAuthenticator(pairs string, st store.Store) *TokenAuthenticator {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(pairs, ",") {
		token, userID, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || token == "" || userID == "" {
			continue
		}
		tokens[token] = userID
	}
	return &TokenAuthenticator{tokens: tokens, store: st}
}

// Authenticate reads the token from the Authorization header or the "token"
// query parameter and resolves it to a stored user.
func (a *TokenAuthenticator) Authenticate(r *http.Request) (domain.User, bool) {
	token := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if token == "" {
		return domain.User{}, false
	}

	userID, ok := a.tokens[token]
	if !ok {
		return domain.User{}, false
	}

	user, err := a.store.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		return domain.User{}, false
	}
	return *user, true
}
