package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.yaml", `
telegram:
  token: "123:abc"
  allowed_user_ids: [100, 200]
  admin_user_ids: [900]
  poll_timeout: "15s"
logging:
  level: debug
  console: true
  file:
    enabled: true
    path: /var/log/bot.log
reminders:
  poll_interval: "30s"
  start_delay: "2s"
storage:
  driver: sqlite
  path: /var/lib/bot/reminders.db
  busy_timeout: "3s"
content:
  path: /etc/bot/content.yaml
health:
  enabled: true
  addr: ":10000"
digest:
  enabled: true
  schedule: "0 9 * * 1"
  timezone: "Europe/Moscow"
`)

	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if len(cfg.Telegram.AllowedUserIDs) != 2 || cfg.Telegram.AllowedUserIDs[1] != 200 {
		t.Fatalf("allowed = %v", cfg.Telegram.AllowedUserIDs)
	}
	if cfg.Storage.Driver != "sqlite" || !cfg.Logging.File.Enabled {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Health == nil || !cfg.Health.Enabled || cfg.Health.Addr != ":10000" {
		t.Fatalf("health = %+v", cfg.Health)
	}
	if cfg.Digest == nil || cfg.Digest.Schedule != "0 9 * * 1" {
		t.Fatalf("digest = %+v", cfg.Digest)
	}
	if got := m.Get(); got != cfg {
		t.Fatal("Get must return the committed config")
	}
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.json", `{
  "telegram": {"token": "t", "allowed_user_ids": [1], "admin_user_ids": []},
  "logging": {"level": "info", "console": true, "file": {"enabled": false, "path": ""}},
  "reminders": {},
  "storage": {"driver": "file", "path": "reminders.json"},
  "content": {"path": "content.yaml"}
}`)

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != "file" || cfg.Logging.Level != "info" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.yaml", `
telegram:
  token: "t"
  allowed_users: [1]
`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "config.json", `{"telegram":{"token":"t"}}{"extra":1}`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	m := NewManager("unused")
	ch := m.Subscribe(1)

	cfg := &Config{}
	m.Commit(cfg)
	m.publish(cfg)

	select {
	case got := <-ch:
		if got != cfg {
			t.Fatal("subscriber received wrong config")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never notified")
	}

	m.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel must be closed after Unsubscribe")
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()

	if d, err := ParseDurationField("x", "90s"); err != nil || d != 90*time.Second {
		t.Fatalf("ParseDurationField = %v, %v", d, err)
	}
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty = %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "soon"); err == nil {
		t.Fatal("expected error for bad duration")
	}
	if d, err := ParseDurationOrDefault("x", "", 5*time.Second); err != nil || d != 5*time.Second {
		t.Fatalf("default = %v, %v", d, err)
	}
}
