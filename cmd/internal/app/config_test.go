package app

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("USERSVC_PROFILE_STORE", "")
	t.Setenv("USERSVC_IDENTITY_PROVIDER", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:8000" {
		t.Fatalf("HTTPAddr=%q", cfg.HTTPAddr)
	}
	if cfg.IdentityProvider != ProviderCognito || cfg.ProfileStore != StoreDynamoDB {
		t.Fatalf("provider=%q store=%q", cfg.IdentityProvider, cfg.ProfileStore)
	}
	if cfg.ProfileTable != "UserProfile" || cfg.DBSchema != "usersvc" {
		t.Fatalf("table=%q schema=%q", cfg.ProfileTable, cfg.DBSchema)
	}
	if cfg.ReadTimeout != 15*time.Second || cfg.DBMaxConns != 10 || cfg.DBPingTimeout != 3*time.Second || !cfg.MetricsEnabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("USERSVC_PROFILE_STORE", " Memory ")
	t.Setenv("USERSVC_HTTP_READ_TIMEOUT", "3s")
	t.Setenv("USERSVC_DB_MAX_CONNS", "-4")
	t.Setenv("AWS_USER_POOL_ID", "pool-1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ProfileStore != StoreMemory {
		t.Fatalf("store=%q want=%q", cfg.ProfileStore, StoreMemory)
	}
	if cfg.ReadTimeout != 3*time.Second {
		t.Fatalf("ReadTimeout=%v", cfg.ReadTimeout)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("DBMaxConns=%d want clamp to 10", cfg.DBMaxConns)
	}
	if cfg.UserPoolID != "pool-1" {
		t.Fatalf("UserPoolID=%q", cfg.UserPoolID)
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	t.Setenv("USERSVC_HTTP_IDLE_TIMEOUT", "soon")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "memory", cfg: Config{IdentityProvider: ProviderCognito, ProfileStore: StoreMemory}},
		{name: "dynamodb", cfg: Config{IdentityProvider: ProviderCognito, ProfileStore: StoreDynamoDB}},
		{name: "postgres", cfg: Config{IdentityProvider: ProviderCognito, ProfileStore: StorePostgres, DatabaseURL: "postgres://x"}},
		{name: "postgres without url", cfg: Config{IdentityProvider: ProviderCognito, ProfileStore: StorePostgres}, wantErr: "USERSVC_DATABASE_URL"},
		{name: "unknown store", cfg: Config{IdentityProvider: ProviderCognito, ProfileStore: "redis"}, wantErr: "unknown profile store"},
		{name: "unknown provider", cfg: Config{IdentityProvider: "okta", ProfileStore: StoreMemory}, wantErr: "unknown identity provider"},
	}

	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: err=%v want substring %q", tc.name, err, tc.wantErr)
		}
	}
}
