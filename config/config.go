/*
Package config loads process configuration from the environment.

PURPOSE:
  One envconfig-processed struct for the whole process. The only required
  value is the store credential payload: a base64-encoded JSON blob handed
  to the deployment by the provisioning side. The process must not serve
  traffic without it.

ENVIRONMENT:
  RECON_APP_PORT                  HTTP port (default 8080)
  RECON_LOG_LEVEL                 debug|info|warn|error (default info)
  RECON_LOG_FORMAT                json|console (default json)
  RECON_STORE_CREDENTIALS_BASE64  required; base64 JSON {"driver","dsn"}

SEE ALSO:
  - cmd/server/main.go: Fatal on load failure, before serving
*/
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App   AppConfig
	Store StoreConfig
}

type AppConfig struct {
	Port      string `envconfig:"RECON_APP_PORT" default:"8080"`
	LogLevel  string `envconfig:"RECON_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"RECON_LOG_FORMAT" default:"json"`
}

type StoreConfig struct {
	CredentialsBase64 string `envconfig:"RECON_STORE_CREDENTIALS_BASE64" required:"true"`
}

// Credentials is the decoded store credential payload.
type Credentials struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

// Load processes the environment and verifies the credential payload
// decodes. A missing or undecodable payload is a startup-fatal error.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Store.Credentials(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Credentials decodes the base64 JSON credential payload.
func (s StoreConfig) Credentials() (Credentials, error) {
	raw, err := base64.StdEncoding.DecodeString(s.CredentialsBase64)
	if err != nil {
		return Credentials{}, fmt.Errorf("decoding store credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parsing store credentials: %w", err)
	}
	if creds.DSN == "" {
		return Credentials{}, fmt.Errorf("store credentials missing dsn")
	}
	if creds.Driver == "" {
		creds.Driver = "sqlite3"
	}
	return creds, nil
}
