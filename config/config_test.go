package config

import (
	"encoding/base64"
	"testing"
)

func creds(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestLoad(t *testing.T) {
	t.Setenv("RECON_STORE_CREDENTIALS_BASE64", creds(`{"driver":"sqlite3","dsn":"./recon.db"}`))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("port = %q, want default 8080", cfg.App.Port)
	}

	c, err := cfg.Store.Credentials()
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if c.DSN != "./recon.db" || c.Driver != "sqlite3" {
		t.Errorf("credentials = %+v", c)
	}
}

func TestLoadMissingCredentialsFails(t *testing.T) {
	t.Setenv("RECON_STORE_CREDENTIALS_BASE64", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestLoadInvalidBase64Fails(t *testing.T) {
	t.Setenv("RECON_STORE_CREDENTIALS_BASE64", "%%% not base64 %%%")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestLoadInvalidJSONFails(t *testing.T) {
	t.Setenv("RECON_STORE_CREDENTIALS_BASE64", creds("not json"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

func TestCredentialsDefaultDriver(t *testing.T) {
	s := StoreConfig{CredentialsBase64: creds(`{"dsn":":memory:"}`)}

	c, err := s.Credentials()
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if c.Driver != "sqlite3" {
		t.Errorf("driver = %q, want sqlite3 default", c.Driver)
	}
}

func TestCredentialsMissingDSNFails(t *testing.T) {
	s := StoreConfig{CredentialsBase64: creds(`{"driver":"sqlite3"}`)}

	if _, err := s.Credentials(); err == nil {
		t.Fatal("expected error for missing dsn")
	}
}
