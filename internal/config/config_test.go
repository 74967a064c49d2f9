package config

import (
	"testing"
	"time"

	"github.com/DTyss/GymApp-sub000/internal/models"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("QR_SECRET", "qr")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := loadFromEnv()
	if err != nil {
		t.Fatalf("loadFromEnv: %v", err)
	}
	if cfg.Port != "8080" || cfg.QRDefaultTTL != 60*time.Second || cfg.QRMaxTTL != 5*time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.QRSingleUse {
		t.Fatalf("expected single-use tokens by default")
	}
	if cfg.MembershipSelection != models.SelectLatestExpiring {
		t.Fatalf("expected latest_expiring, got %q", cfg.MembershipSelection)
	}
	if cfg.EventsExchange != "gym.events" || cfg.ExpirySweepSchedule != "@every 15m" {
		t.Fatalf("unexpected event defaults: %+v", cfg)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("QR_SECRET", "")

	if _, err := loadFromEnv(); err == nil {
		t.Fatalf("expected missing QR_SECRET to fail")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string][2]string{
		"postgres without url": {"STORE_DRIVER", "postgres"},
		"unknown driver":       {"STORE_DRIVER", "mysql"},
		"unknown order":        {"CHECKIN_MEMBERSHIP_ORDER", "random"},
		"ttl above max":        {"QR_DEFAULT_TTL", "10m"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("DB_URL", "")
			t.Setenv(kv[0], kv[1])
			if _, err := loadFromEnv(); err == nil {
				t.Fatalf("expected %s=%s to be rejected", kv[0], kv[1])
			}
		})
	}
}

func TestSoonestExpiringOrder(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECKIN_MEMBERSHIP_ORDER", "soonest_expiring")
	t.Setenv("APP_ENV", "Local")

	cfg, err := loadFromEnv()
	if err != nil {
		t.Fatalf("loadFromEnv: %v", err)
	}
	if cfg.MembershipSelection != models.SelectSoonestExpiring {
		t.Fatalf("expected soonest_expiring, got %q", cfg.MembershipSelection)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected local to normalise to development, got %q", cfg.AppEnv)
	}
}
