// Package config loads client configuration from the environment, with
// an optional .env file for development setups.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Every field has a default so
// the binary runs against a local backend with no setup.
type Config struct {
	APIURL         string // base URL of the ticket backend
	WebURL         string // application origin opened on notification activation
	PushGatewayURL string // push provider gateway (token + message stream)
	VAPIDPublicKey string // public credential for push subscription requests
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present; real environment
// variables win.
func Load() Config {
	_ = godotenv.Load() // missing .env is fine

	return Config{
		APIURL:         getenv("PARKWATCH_API_URL", "http://localhost:5000"),
		WebURL:         getenv("PARKWATCH_WEB_URL", "http://localhost:3000"),
		PushGatewayURL: getenv("PARKWATCH_PUSH_GATEWAY_URL", ""),
		VAPIDPublicKey: getenv("PARKWATCH_VAPID_PUBLIC_KEY", ""),
	}
}

// PushConfigured reports whether the push gateway is reachable in this
// configuration. Without it the client runs with notifications off.
func (c Config) PushConfigured() bool {
	return c.PushGatewayURL != "" && c.VAPIDPublicKey != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
