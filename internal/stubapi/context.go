package stubapi

import (
	"context"
	"net/http"
)

func contextWithUser(ctx context.Context, u *user) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func userFrom(r *http.Request) *user {
	u, _ := r.Context().Value(userKey).(*user)
	return u
}

// requireUser pulls the authenticated user off the request and enforces
// the given role, writing a 403 on mismatch.
func requireUser(w http.ResponseWriter, r *http.Request, role string) (*user, bool) {
	u := userFrom(r)
	if u == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return nil, false
	}
	if u.Role != role {
		http.Error(w, "wrong role for this endpoint", http.StatusForbidden)
		return nil, false
	}
	return u, true
}
