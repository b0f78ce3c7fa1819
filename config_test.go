package bridgelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should write defaults on first run", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "bridgelog")

		cfg, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if _, err := os.Stat(cfg.Path()); err != nil {
			t.Fatalf("wanted config file to exist: %v", err)
		}
		if cfg.RetryDelay != time.Second || cfg.MaxRetries != DefaultMaxRetries || cfg.MirrorLimit != DefaultMirrorLimit {
			t.Fatalf("\nwanted:\ndefaults\ngot:\n%+v", cfg)
		}
		if cfg.DBPath != filepath.Join(dir, "bridgelog.db") || cfg.ConfigDir != dir {
			t.Fatalf("\nwanted:\npaths under %s\ngot:\n%+v", dir, cfg)
		}
	})

	t.Run("should persist updates", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if err := cfg.Set("retry_delay", "250ms"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := cfg.Set("max_retries", "5"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if cfg.RetryDelay != 250*time.Millisecond || cfg.MaxRetries != 5 {
			t.Fatalf("\nwanted:\n250ms, 5\ngot:\n%s, %d", cfg.RetryDelay, cfg.MaxRetries)
		}

		reloaded, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if reloaded.RetryDelay != 250*time.Millisecond || reloaded.MaxRetries != 5 {
			t.Fatalf("\nwanted:\n250ms, 5\ngot:\n%s, %d", reloaded.RetryDelay, reloaded.MaxRetries)
		}
	})

	t.Run("should reject unknown keys", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := cfg.Set("chrome_dirs", "x"); err == nil {
			t.Fatalf("\nwanted:\nnon-nil\ngot:\nnil")
		}
	})

	t.Run("should reject invalid values without writing them", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		for key, value := range map[string]string{"probe_interval": "0s", "mirror_limit": "0", "max_retries": "-1"} {
			if err := cfg.Set(key, value); err == nil {
				t.Fatalf("\nwanted:\nerror for %s=%s\ngot:\nnil", key, value)
			}
		}
		if cfg.ProbeInterval != 15*time.Second || cfg.MirrorLimit != DefaultMirrorLimit {
			t.Fatalf("\nwanted:\nunchanged config\ngot:\n%+v", cfg)
		}

		if err := cfg.Set("log_level", "debug"); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		reloaded, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if reloaded.ProbeInterval != 15*time.Second || reloaded.LogLevel != "debug" {
			t.Fatalf("\nwanted:\n15s, debug\ngot:\n%s, %s", reloaded.ProbeInterval, reloaded.LogLevel)
		}
	})

	t.Run("should refuse to load an invalid file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("probe_interval: 0s\n"), 0600); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		if _, err := LoadConfig(dir); err == nil {
			t.Fatalf("\nwanted:\nnon-nil\ngot:\nnil")
		}
	})

	t.Run("should apply environment overrides", func(t *testing.T) {
		t.Setenv("BRIDGELOG_SINK_URL", "https://sink.startupbridge.app")

		cfg, err := LoadConfig(t.TempDir())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if cfg.SinkURL != "https://sink.startupbridge.app" {
			t.Fatalf("\nwanted:\nhttps://sink.startupbridge.app\ngot:\n%s", cfg.SinkURL)
		}
	})

	t.Run("should configure a logger", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		cfg.MirrorLimit = 7

		l, err := New(newFakeSink(), newMemStore(), WithConfig(cfg))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		defer l.Close(t.Context())

		if l.mirror.limit != 7 || l.retryDelay != time.Second || l.maxRetries != DefaultMaxRetries {
			t.Fatalf("\nwanted:\nconfig applied\ngot:\nlimit %d delay %s retries %d", l.mirror.limit, l.retryDelay, l.maxRetries)
		}
	})
}
