package config

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BitrixWebhookBaseURL string
	DatabaseURL          string
	ListenAddr           string

	// Base64-encoded PEM material for the Postgres TLS connection.
	// All three must be set together; empty means plain connection.
	PGCACert     string
	PGClientCert string
	PGClientKey  string

	// Window for the optional webhook dedup pre-filter; zero disables it.
	DedupWindow time.Duration
}

func Load() (Config, error) {
	// Local development convenience; absence of .env is not an error.
	_ = godotenv.Load()

	base := strings.TrimSpace(os.Getenv("BITRIX_WEBHOOK_BASE_URL"))
	if base == "" {
		return Config{}, fmt.Errorf("BITRIX_WEBHOOK_BASE_URL is empty")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is empty")
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	cfg := Config{
		BitrixWebhookBaseURL: base,
		DatabaseURL:          dbURL,
		ListenAddr:           ":" + port,
		PGCACert:             strings.TrimSpace(os.Getenv("PG_CA_CERT_BASE64")),
		PGClientCert:         strings.TrimSpace(os.Getenv("PG_CLIENT_CERT_BASE64")),
		PGClientKey:          strings.TrimSpace(os.Getenv("PG_CLIENT_KEY_BASE64")),
	}

	if raw := strings.TrimSpace(os.Getenv("WEBHOOK_DEDUP_WINDOW")); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("WEBHOOK_DEDUP_WINDOW: %w", err)
		}
		if window < 0 {
			return Config{}, fmt.Errorf("WEBHOOK_DEDUP_WINDOW is negative")
		}
		cfg.DedupWindow = window
	}

	return cfg, nil
}

// PGTLSConfig decodes the base64 PEM material into a tls.Config for pgx.
// Returns nil when no material is configured.
func (c Config) PGTLSConfig() (*tls.Config, error) {
	if c.PGCACert == "" && c.PGClientCert == "" && c.PGClientKey == "" {
		return nil, nil
	}
	if c.PGCACert == "" || c.PGClientCert == "" || c.PGClientKey == "" {
		return nil, fmt.Errorf("PG_CA_CERT_BASE64, PG_CLIENT_CERT_BASE64 and PG_CLIENT_KEY_BASE64 must be set together")
	}

	ca, err := base64.StdEncoding.DecodeString(c.PGCACert)
	if err != nil {
		return nil, fmt.Errorf("decode PG_CA_CERT_BASE64: %w", err)
	}
	cert, err := base64.StdEncoding.DecodeString(c.PGClientCert)
	if err != nil {
		return nil, fmt.Errorf("decode PG_CLIENT_CERT_BASE64: %w", err)
	}
	key, err := base64.StdEncoding.DecodeString(c.PGClientKey)
	if err != nil {
		return nil, fmt.Errorf("decode PG_CLIENT_KEY_BASE64: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("PG_CA_CERT_BASE64: no certificates found")
	}

	pair, err := tls.X509KeyPair(cert, key)
	if err != nil {
		return nil, fmt.Errorf("load client key pair: %w", err)
	}

	return &tls.Config{
		RootCAs:      pool,
		Certificates: []tls.Certificate{pair},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
