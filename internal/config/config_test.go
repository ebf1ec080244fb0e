package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{Model: "clip-vit"},
		Vision:    VisionConfig{Model: "qwen-vl"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingModels(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}

	cfg = validConfig()
	cfg.Vision.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing vision model")
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Threshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Dimensions != 512 {
		t.Errorf("expected Dimensions=512, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.TimeoutSec != 30 {
		t.Errorf("expected Embedding.TimeoutSec=30, got %d", cfg.Embedding.TimeoutSec)
	}
	if cfg.Vision.MaxOutputTokens != 1024 {
		t.Errorf("expected MaxOutputTokens=1024, got %d", cfg.Vision.MaxOutputTokens)
	}
	if cfg.Vision.TimeoutSec != 60 {
		t.Errorf("expected Vision.TimeoutSec=60, got %d", cfg.Vision.TimeoutSec)
	}
	if cfg.Search.Threshold != 0.45 {
		t.Errorf("expected Threshold=0.45, got %f", cfg.Search.Threshold)
	}
	if cfg.Search.Limit != 8 || cfg.Search.TextLimit != 12 {
		t.Errorf("expected Limit=8 TextLimit=12, got %d %d", cfg.Search.Limit, cfg.Search.TextLimit)
	}
	if cfg.Search.CandidateCap != 8 || cfg.Search.UnfilteredCap != 50 {
		t.Errorf("expected CandidateCap=8 UnfilteredCap=50, got %d %d",
			cfg.Search.CandidateCap, cfg.Search.UnfilteredCap)
	}
	if cfg.Search.DownloadTimeoutSec != 6 {
		t.Errorf("expected DownloadTimeoutSec=6, got %d", cfg.Search.DownloadTimeoutSec)
	}
	if cfg.Indexing.BatchSize != 25 {
		t.Errorf("expected BatchSize=25, got %d", cfg.Indexing.BatchSize)
	}
	if cfg.Storage.KeyPrefix != "trovato:" {
		t.Errorf("expected KeyPrefix='trovato:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 90, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Search:   SearchConfig{Threshold: 0.6, Limit: 4},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.Threshold != 0.6 || cfg.Search.Limit != 4 {
		t.Errorf("expected Threshold=0.6 Limit=4, got %f %d", cfg.Search.Threshold, cfg.Search.Limit)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TROVATO_TEST_KEY", "from-env")

	in := []byte("api_key: ${TROVATO_TEST_KEY}\nbase_url: ${TROVATO_TEST_URL:-https://fallback.example}\n")
	out := string(expandEnvVars(in))

	if out != "api_key: from-env\nbase_url: https://fallback.example\n" {
		t.Errorf("unexpected expansion:\n%s", out)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
http:
  port: 9090
database:
  addrs: ["localhost:6379"]
embedding:
  model: clip-vit
vision:
  model: qwen-vl
`
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Search.Limit != 8 {
		t.Error("defaults must be applied on load")
	}
}
