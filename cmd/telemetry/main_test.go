package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-telemetry/internal/auth"
)

const testSecret = "test-secret-for-development-only-0123456789"

const testInventory = `
houses:
  - id: main
    name: Main House
    rooms:
      - id: lounge
        name: Lounge
devices:
  - id: lounge-thermostat
    name: Lounge Thermostat
    room_id: lounge
    type: thermostat
    placement: indoor
    sensors:
      - id: lounge-temp
        type: temperature
        unit: C
`

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// writeConfig writes a config file into a temp dir and points
// GRAYLOGIC_CONFIG at it.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("GRAYLOGIC_CONFIG", path)
	return dir
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("GRAYLOGIC_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_InvalidStoreBackend verifies validation errors abort startup.
func TestRun_InvalidStoreBackend(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
store:
  backend: postgres
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with unknown store backend")
	}
	if !strings.Contains(err.Error(), "store.backend") {
		t.Errorf("error = %v, want mention of store.backend", err)
	}
}

// TestRun_MemoryStoreStartupAndShutdown starts the service with no external
// dependencies and stops it via context cancellation.
func TestRun_MemoryStoreStartupAndShutdown(t *testing.T) {
	dir := t.TempDir()
	invPath := filepath.Join(dir, "inventory.yaml")
	if err := os.WriteFile(invPath, []byte(testInventory), 0600); err != nil {
		t.Fatalf("failed to write inventory: %v", err)
	}

	writeConfig(t, `
site:
  id: test-site
store:
  backend: memory
inventory:
  path: "`+invPath+`"
logging:
  level: warn
  format: text
api:
  host: "127.0.0.1"
  port: `+strconv.Itoa(freePort(t))+`
`)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestRun_SQLiteStoreStartupAndShutdown exercises the migration path.
func TestRun_SQLiteStoreStartupAndShutdown(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "telemetry.db")

	writeConfig(t, `
site:
  id: test-site
store:
  backend: sqlite
database:
  path: "`+dbPath+`"
  wal_mode: true
  busy_timeout: 5
inventory:
  path: "`+filepath.Join(dir, "missing.yaml")+`"
logging:
  level: warn
  format: text
api:
  host: "127.0.0.1"
  port: `+strconv.Itoa(freePort(t))+`
`)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

// TestRun_InvalidInventory verifies a malformed inventory aborts startup.
func TestRun_InvalidInventory(t *testing.T) {
	dir := t.TempDir()
	invPath := filepath.Join(dir, "inventory.yaml")
	if err := os.WriteFile(invPath, []byte("devices:\n  - id: orphan\n    name: Orphan\n    room_id: nowhere\n    type: thermostat\n    placement: indoor\n"), 0600); err != nil {
		t.Fatalf("failed to write inventory: %v", err)
	}

	writeConfig(t, `
site:
  id: test-site
inventory:
  path: "`+invPath+`"
logging:
  level: warn
  format: text
api:
  host: "127.0.0.1"
  port: `+strconv.Itoa(freePort(t))+`
`)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when inventory references an unknown room")
	}
}

// TestGetConfigPath_Default verifies default config path.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("GRAYLOGIC_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("GRAYLOGIC_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestHealthCheck_NilClients verifies disabled components are skipped.
func TestHealthCheck_NilClients(t *testing.T) {
	if err := healthCheck(context.Background(), nil, nil, nil, nil); err != nil {
		t.Errorf("healthCheck() error = %v", err)
	}
}

func TestIssueToken(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
security:
  jwt:
    secret: "`+testSecret+`"
    access_token_ttl: 30
`)

	var out bytes.Buffer
	if err := issueToken(&out, getConfigPath(), "gateway-1", auth.RoleSensor); err != nil {
		t.Fatalf("issueToken() error = %v", err)
	}

	claims, err := auth.ParseToken(strings.TrimSpace(out.String()), testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "gateway-1" {
		t.Errorf("Subject = %q, want gateway-1", claims.Subject)
	}
	if claims.Role != auth.RoleSensor {
		t.Errorf("Role = %q, want %q", claims.Role, auth.RoleSensor)
	}
}

func TestIssueToken_NoSecret(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
`)

	var out bytes.Buffer
	if err := issueToken(&out, getConfigPath(), "gateway-1", auth.RoleSensor); err == nil {
		t.Fatal("issueToken() should fail without a secret")
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestIssueToken_InvalidRole(t *testing.T) {
	writeConfig(t, `
site:
  id: test-site
security:
  jwt:
    secret: "`+testSecret+`"
`)

	var out bytes.Buffer
	if err := issueToken(&out, getConfigPath(), "gateway-1", auth.Role("root")); err == nil {
		t.Fatal("issueToken() should reject an unknown role")
	}
}
