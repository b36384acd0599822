package middleware

import (
	"net/http"

	"github.com/bantest04/Manager-KPI2026/internal/auth"
	"github.com/bantest04/Manager-KPI2026/internal/store"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "kpi_session"

// RequireAuth validates the session cookie, loads the member, and puts
// the identity on the request context. Unauthenticated requests get a
// 401; this is a JSON API, so no login redirects.
func RequireAuth(sessions *store.SessionStore, members *store.MemberStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			member, err := members.GetByID(sess.MemberID)
			if err != nil || member == nil {
				unauthorized(w)
				return
			}

			id := auth.Identity{
				MemberID:  member.ID,
				Name:      member.Name,
				Role:      member.Role,
				SessionID: sess.ID,
			}

			ctx := auth.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLeader checks that the authenticated member has the leader role.
func RequireLeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsLeader(r.Context()) {
			jsonError(w, "leader role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	jsonError(w, "authentication required", http.StatusUnauthorized)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
