package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/yerrors"
)

func sampleConfig() *Config {
	return &Config{
		Password:  "a-very-long-password",
		LightMode: false,
		Seed:      []codec.Host{{IP: [4]byte{127, 0, 0, 1}, Port: 9000}},
		Host:      codec.Host{IP: [4]byte{0, 0, 0, 0}, Port: 9001},
		MaxConns:  8,
		Price:     0,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	cfg := sampleConfig()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Password != cfg.Password || got.Host.Port != cfg.Host.Port || len(got.Seed) != 1 {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, cfg)
	}
}

func TestValidateRejectsShortPassword(t *testing.T) {
	cfg := sampleConfig()
	cfg.Password = "short"
	if err := cfg.Validate(); yerrors.KindOf(err) != yerrors.InvalidLength {
		t.Fatalf("expected InvalidLength for a short password, got %v", err)
	}
}

func TestValidateFillsDefaultMaxConns(t *testing.T) {
	cfg := sampleConfig()
	cfg.MaxConns = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.MaxConns != DefaultMaxConns {
		t.Fatalf("expected default max_conns %d, got %d", DefaultMaxConns, cfg.MaxConns)
	}
}

func TestLoadRejectsMalformedHost(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	badJSON := `{"password":"a-very-long-password","light_mode":false,"seed":[],"host":{"address":"not-an-ip","port":1},"max_conns":8,"price":0}`
	if err := os.WriteFile(path, []byte(badJSON), 0600); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	if _, err := Load(path); yerrors.KindOf(err) != yerrors.ParsingFailure {
		t.Fatalf("expected ParsingFailure for a malformed host, got %v", err)
	}
}

func TestLoadOrCreateBootstraps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	def := sampleConfig()
	cfg, err := LoadOrCreate(dir, def)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.Password != def.Password {
		t.Fatalf("expected bootstrap config to match defaults")
	}
	again, err := LoadOrCreate(dir, sampleConfig())
	if err != nil {
		t.Fatalf("LoadOrCreate (second call): %v", err)
	}
	if again.Password != def.Password {
		t.Fatalf("expected second call to load the persisted config, not re-bootstrap")
	}
}
