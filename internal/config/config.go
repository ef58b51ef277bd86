package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	// PublicPort is the port the service is reachable on. Media references
	// stored as localhost URLs on this port are treated as already pointing
	// at this server.
	PublicPort string

	DBDriver string
	DBDSN    string

	UploadDir      string // on-disk directory backing /uploads
	UploadBasePath string // canonical URL prefix for question media

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string
}

func FromEnv() Config {
	_ = godotenv.Load()

	addr := envOr("HTTP_ADDR", ":5000")
	port := envOr("PUBLIC_PORT", "")
	if port == "" {
		if i := strings.LastIndex(addr, ":"); i >= 0 {
			port = addr[i+1:]
		}
	}
	return Config{
		HTTPAddr:       addr,
		PublicPort:     port,
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		UploadDir:      envOr("UPLOAD_DIR", "./uploads"),
		UploadBasePath: envOr("UPLOAD_BASE_PATH", "/uploads/exam-questions"),
		AuthSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:      envOr("ADMIN_USER", "admin"),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
