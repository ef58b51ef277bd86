package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/prepacademy/examsvc/internal/rbac"
)

type AuthService struct{ hmac []byte }

func NewAuthService(secret string) *AuthService { return &AuthService{hmac: []byte(secret)} }

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // "admin" or "student"
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "examsvc",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, err
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// LoginOpts carries the bootstrap admin credentials from config so a fresh
// deployment is usable before any user rows exist.
type LoginOpts struct {
	AdminUser     string
	AdminPassHash string // bcrypt
}

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *AuthService, db *sql.DB, opts LoginOpts) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAuthErr(w, http.StatusBadRequest, "bad json")
			return
		}

		var id, hash, role string
		err := db.QueryRowContext(r.Context(),
			`SELECT id, password_hash, role FROM users WHERE username=$1`,
			req.Username).Scan(&id, &hash, &role)
		switch {
		case err == nil:
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
				writeAuthErr(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
		case errors.Is(err, sql.ErrNoRows):
			// bootstrap admin from config
			if req.Username != opts.AdminUser ||
				bcrypt.CompareHashAndPassword([]byte(opts.AdminPassHash), []byte(req.Password)) != nil {
				writeAuthErr(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			id, role = opts.AdminUser, "admin"
		default:
			writeAuthErr(w, http.StatusInternalServerError, "internal error")
			return
		}

		tok, err := a.IssueJWT(id, role)
		if err != nil {
			writeAuthErr(w, http.StatusInternalServerError, "issue token")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok})
	}
}

// JWTMiddleware validates the bearer token and stashes subject and claim
// role in the request context for rbac.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				writeAuthErr(w, http.StatusUnauthorized, "missing bearer")
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil || claims == nil {
				writeAuthErr(w, http.StatusUnauthorized, "bad token")
				return
			}
			ctx := rbac.WithSubject(r.Context(), claims.Sub)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
