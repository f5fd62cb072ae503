package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDurations(t *testing.T) {
	Set("POLL_INTERVAL", "250")
	if got := PollInterval(); got != 250*time.Millisecond {
		t.Fatalf("bare integer: got %v", got)
	}
	Set("POLL_INTERVAL", "2s")
	if got := PollInterval(); got != 2*time.Second {
		t.Fatalf("duration: got %v", got)
	}
	Set("POLL_INTERVAL", "soon")
	if got := PollInterval(); got != defaultPollInterval {
		t.Fatalf("garbage should fall back, got %v", got)
	}

	Set("INACTIVITY_TIMEOUT", "0")
	if got := InactivityTimeout(); got != 0 {
		t.Fatalf("zero disables the watchdog, got %v", got)
	}
}

func TestSessionDriver(t *testing.T) {
	Set("SESSION_DRIVER", "Redis")
	if got := SessionDriver(); got != "redis" {
		t.Fatalf("got %q", got)
	}
	Set("SESSION_DRIVER", "floppy")
	if got := SessionDriver(); got != defaultSessionDriver {
		t.Fatalf("unknown driver should fall back, got %q", got)
	}
}

func TestAPIBaseURL_TrimsSlash(t *testing.T) {
	Set("API_BASE_URL", "http://api.test/")
	if got := APIBaseURL(); got != "http://api.test" {
		t.Fatalf("got %q", got)
	}
}

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(jsonPath, []byte(`{"chat_url":"ws://json/chat","fanout_workers":3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(envPath, []byte("# comment\nexport CHAT_URL=\"ws://env/chat\"\nbogus\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := defaultValues()
	if err := mergeJSONConfig(jsonPath, out); err != nil {
		t.Fatal(err)
	}
	if out["FANOUT_WORKERS"] != "3" || out["CHAT_URL"] != "ws://json/chat" {
		t.Fatalf("json not merged: %v", out)
	}
	if err := mergeDotEnv(envPath, out); err != nil {
		t.Fatal(err)
	}
	if out["CHAT_URL"] != "ws://env/chat" {
		t.Fatalf(".env should override app.json, got %q", out["CHAT_URL"])
	}
}
