package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Backend:   BackendMemory,
		Auth:      AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour},
		Reporting: ReportingConfig{Timezone: "Asia/Colombo", OverdueCronSchedule: "0 1 * * *"},
		WhatsApp:  WhatsAppConfig{BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "memory backend needs no datastore settings", mutate: func(*Config) {}},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "APP_PORT",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Backend = "postgres" },
			wantErr: "DATA_BACKEND",
		},
		{
			name:    "mongodb without uri",
			mutate:  func(c *Config) { c.Backend = BackendMongoDB; c.MongoDB.DBName = "billing" },
			wantErr: "MONGODB_URI",
		},
		{
			name:    "firestore without project",
			mutate:  func(c *Config) { c.Backend = BackendFirestore },
			wantErr: "FIRESTORE_PROJECT_ID",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" },
			wantErr: "REPORT_TIMEZONE",
		},
		{
			name:    "bad cron schedule",
			mutate:  func(c *Config) { c.Reporting.OverdueCronSchedule = "nightly" },
			wantErr: "OVERDUE_CRON_SCHEDULE",
		},
		{
			name:    "half configured sheets",
			mutate:  func(c *Config) { c.Sheets.SpreadsheetID = "sheet" },
			wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH",
		},
		{
			name: "whatsapp enabled without api version",
			mutate: func(c *Config) {
				c.WhatsApp.AccessToken = "token"
				c.WhatsApp.PhoneNumberID = "123"
				c.WhatsApp.APIVersion = ""
			},
			wantErr: "WHATSAPP_API_VERSION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	for _, key := range []string{"APP_PORT", "JWT_TTL", "REPORT_TIMEZONE", "OVERDUE_CRON_SCHEDULE",
		"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_REPORT_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("testdata/does-not-exist.env")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("ttl = %v", cfg.Auth.TokenTTL)
	}
	if cfg.Reporting.Timezone != "Asia/Colombo" || cfg.Reporting.OverdueCronSchedule != "0 1 * * *" {
		t.Errorf("reporting = %+v", cfg.Reporting)
	}
	if got := strings.Join(cfg.Server.AllowedOrigins, "|"); got != "http://a.test|http://b.test" {
		t.Errorf("origins = %q", got)
	}
	if cfg.WhatsApp.Enabled() || cfg.Sheets.Enabled() {
		t.Error("optional integrations should be disabled by default")
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL", "forever")

	if _, err := Load("testdata/does-not-exist.env"); err == nil {
		t.Fatal("expected error for unparseable JWT_TTL")
	}
}
