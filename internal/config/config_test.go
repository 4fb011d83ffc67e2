package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GOOGLE_CALENDAR_IDS", "")
	t.Setenv("MEETME_STORE", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DailyStart != "8am" || cfg.DailyEnd != "5pm" {
		t.Fatalf("unexpected default window %s-%s", cfg.DailyStart, cfg.DailyEnd)
	}
	if cfg.Store.Driver != "file" || len(cfg.Google.CalendarIDs) != 1 || cfg.Google.CalendarIDs[0] != "primary" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetme.yaml")
	body := `
timezone: America/Los_Angeles
daily_start: 9am
google:
  calendar_ids: [work, home]
store:
  driver: Postgres
  database_url: postgres://file
`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("GOOGLE_CALENDAR_IDS", "")
	t.Setenv("MEETME_STORE", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DailyStart != "9am" || cfg.DailyEnd != "5pm" {
		t.Fatalf("expected file value with default fill-in, got %s-%s", cfg.DailyStart, cfg.DailyEnd)
	}
	if len(cfg.Google.CalendarIDs) != 2 {
		t.Fatalf("expected calendars from file, got %v", cfg.Google.CalendarIDs)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.DatabaseURL != "postgres://env" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/Los_Angeles" {
		t.Fatalf("unexpected location %v, %v", loc, err)
	}
}

func TestLoad_EnvCalendarList(t *testing.T) {
	t.Setenv("GOOGLE_CALENDAR_IDS", " a@example.com, ,b@example.com ")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Google.CalendarIDs) != 2 || cfg.Google.CalendarIDs[1] != "b@example.com" {
		t.Fatalf("unexpected calendar ids %v", cfg.Google.CalendarIDs)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetme.yaml")
	if err := os.WriteFile(path, []byte("store: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
