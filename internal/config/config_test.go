package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServerAppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	if err := os.WriteFile(path, []byte("sv_maxclients: 16\nlisten: \":27961\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if cfg.MaxClients != 16 {
		t.Fatalf("got MaxClients=%d want 16", cfg.MaxClients)
	}
	if cfg.Listen != ":27961" {
		t.Fatalf("got Listen=%q want :27961", cfg.Listen)
	}
	if cfg.TickRate != 20 {
		t.Fatalf("expected the default TickRate to survive an override-only file, got %d", cfg.TickRate)
	}
}

func TestLoadGametypesParsesMultipleEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gametypes.toml")
	content := `
[ffa]
name = "Free For All"
friendly_fire = false
time_limit_minutes = 15
score_limit = 20

[ctf]
name = "Capture the Flag"
friendly_fire = true
time_limit_minutes = 20
score_limit = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	gt, err := LoadGametypes(path)
	if err != nil {
		t.Fatalf("LoadGametypes: %v", err)
	}
	if len(gt) != 2 {
		t.Fatalf("got %d gametypes want 2", len(gt))
	}
	if !gt["ctf"].FriendlyFire {
		t.Fatalf("expected ctf friendly_fire to be true")
	}
	if gt["ffa"].ScoreLimit != 20 {
		t.Fatalf("got ffa score_limit=%d want 20", gt["ffa"].ScoreLimit)
	}
}

func TestWatcherReloadsGametypesOnWrite(t *testing.T) {
	dir := t.TempDir()
	serverPath := filepath.Join(dir, "server.yaml")
	gtPath := filepath.Join(dir, "gametypes.toml")
	os.WriteFile(serverPath, []byte("sv_maxclients: 8\n"), 0o644)
	os.WriteFile(gtPath, []byte("[ffa]\nname = \"Free For All\"\n"), 0o644)

	done := make(chan Gametypes, 1)
	w, err := NewWatcher(serverPath, gtPath, nil, func(gt Gametypes) { done <- gt })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	os.WriteFile(gtPath, []byte("[ffa]\nname = \"Free For All\"\ntime_limit_minutes = 30\n"), 0o644)

	select {
	case gt := <-done:
		if gt["ffa"].TimeLimit != 30 {
			t.Fatalf("got time limit %d want 30", gt["ffa"].TimeLimit)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for reload callback")
	}
}
