package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashwyne/hookbot/internal/infrastructure/config"
	"github.com/ashwyne/hookbot/internal/webhook"
)

// writeConfig writes a test config file and points HOOKBOT_CONFIG at it.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("HOOKBOT_CONFIG", configPath)
}

// TestRun_MalformedConfig verifies run fails when the config file
// does not parse. A missing file is fine (defaults apply); a broken
// one is not.
func TestRun_MalformedConfig(t *testing.T) {
	writeConfig(t, "webhooks: [not a mapping")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with a malformed config file")
	}
}

// TestRun_MissingDatabasePath verifies run fails when the database
// path is explicitly blanked out.
func TestRun_MissingDatabasePath(t *testing.T) {
	writeConfig(t, `
chat:
  nick: hookbot
  channels: ["#bots"]

database:
  path: ""
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
    tls: false
  qos: 1

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

webhooks:
  port: 8080
  autostart: false
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("HOOKBOT_CONFIG", "")
	os.Unsetenv("HOOKBOT_CONFIG")

	path := getConfigPath()
	if path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("HOOKBOT_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestCredentials_Conversion verifies config credential pairs map
// onto the webhook type, preserving order.
func TestCredentials_Conversion(t *testing.T) {
	cfgs := []config.CredentialConfig{
		{User: "foo", Password: "bar"},
		{User: "ops", Password: "secret"},
	}

	got := credentials(cfgs)
	want := []webhook.Credential{
		{User: "foo", Password: "bar"},
		{User: "ops", Password: "secret"},
	}
	if len(got) != len(want) {
		t.Fatalf("credentials = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("credentials[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCredentials_Empty(t *testing.T) {
	if got := credentials(nil); len(got) != 0 {
		t.Errorf("credentials(nil) = %v, want empty", got)
	}
}

// TestRun_ContextCancelledDuringStartup verifies cancellation during
// startup. Requires no broker: the MQTT connect either fails fast or
// the run loop exits on the deadline.
func TestRun_ContextCancelledDuringStartup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	writeConfig(t, `
chat:
  nick: hookbot
  channels: ["#bots"]

database:
  path: "`+dbPath+`"
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-client"
    tls: false
  qos: 1

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout

webhooks:
  port: 8080
  autostart: false
`)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := run(ctx)

	if err == nil {
		t.Log("run() completed without error (may have cancelled cleanly)")
	} else {
		t.Logf("run() returned error (expected): %v", err)
	}
}
