package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	AuthSecret string

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:      addr,
		PublicURL:     os.Getenv("PUBLIC_URL"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: os.Getenv("ADMIN_PASS_HASH"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
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
