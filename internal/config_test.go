package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Source.Cwd != "pages" || cfg.Output.Cwd != "public" || cfg.Output.Extension != ".html" {
		t.Errorf("unexpected defaults: %+v / %+v", cfg.Source, cfg.Output)
	}
}

func TestStorageConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StorageConfig
		wantErr string
	}{
		{"local", StorageConfig{Kind: StorageLocal, Root: "site"}, ""},
		{"local without root", StorageConfig{Kind: StorageLocal}, "Root"},
		{"memory", StorageConfig{Kind: StorageMemory}, ""},
		{"sqlite", StorageConfig{Kind: StorageSQLite, SQLite: SQLiteConfig{Path: "site.db"}}, ""},
		{"sqlite without path", StorageConfig{Kind: StorageSQLite}, "Path"},
		{"s3 without bucket", StorageConfig{Kind: StorageS3}, "s3"},
		{"unknown kind", StorageConfig{Kind: "ftp"}, "Kind"},
		{"missing kind", StorageConfig{}, "Kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestOutputConfig_Extension(t *testing.T) {
	for ext, ok := range map[string]bool{".html": true, ".htm": true, "html": false, "": false, ".a/b": false} {
		cfg := OutputConfig{Storage: StorageConfig{Kind: StorageMemory}, Cwd: "public", Extension: ext}
		if err := cfg.Validate(); (err == nil) != ok {
			t.Errorf("extension %q: err = %v, want ok=%v", ext, err, ok)
		}
	}
}

func TestFullConfig_SourceErrorsPrefixed(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Source.Cwd = ""
	err := cfg.Validate()
	if err == nil || !strings.HasPrefix(err.Error(), "source:") {
		t.Fatalf("err = %v, want source error", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
