package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depscope.toml")
	content := `
[registry]
url = "https://registry.example.com"
metadata_timeout = "30s"

[resolve]
max_depth = 5
batch_size = 4

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Registry.URL != "https://registry.example.com" {
		t.Errorf("registry url = %q", cfg.Registry.URL)
	}
	if time.Duration(cfg.Registry.MetadataTimeout) != 30*time.Second {
		t.Errorf("metadata timeout = %v", time.Duration(cfg.Registry.MetadataTimeout))
	}
	if cfg.Resolve.MaxDepth != 5 || cfg.Resolve.BatchSize != 4 {
		t.Errorf("resolve section = %+v", cfg.Resolve)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}

	client := cfg.clientConfig()
	if client.RegistryURL != cfg.Registry.URL {
		t.Errorf("clientConfig lost the registry url")
	}
	if client.MetadataTimeout != 30*time.Second {
		t.Errorf("clientConfig timeout = %v", client.MetadataTimeout)
	}
}

func TestLoadConfig_MissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("expected zero config without a file, got %v", err)
	}
	if cfg.Registry.URL != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("an explicitly named missing config must error")
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[registry]\nmetadata_timeout = \"soon\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("expected error for unparseable duration")
	}
}
