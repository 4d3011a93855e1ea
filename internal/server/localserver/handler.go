package localserver

import (
	"net/http"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

// LocalIdentity is the principal of requests arriving on the socket.
var LocalIdentity = ejb.Identity{Name: "$local", Roles: []string{"admin"}}

// Handler runs next with LocalIdentity in the request context.
func Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(ejb.WithIdentity(r.Context(), LocalIdentity)))
	})
}
