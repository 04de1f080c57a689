package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 8080
solr:
  url: http://localhost:8983/solr/sources
schema:
  path: schema.yaml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Solr.Handler != "/select" {
		t.Errorf("handler default = %q", cfg.Solr.Handler)
	}
	if cfg.Solr.TimeoutSec != 30 {
		t.Errorf("timeout default = %d", cfg.Solr.TimeoutSec)
	}
	if cfg.Logging.Env != "prod" {
		t.Errorf("logging env default = %q", cfg.Logging.Env)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_SOLR_URL", "http://solr:8983/solr/core")

	path := writeConfig(t, `
http:
  port: 8080
solr:
  url: ${TEST_SOLR_URL}
schema:
  path: ${TEST_SCHEMA_PATH:-fallback.yaml}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Solr.URL != "http://solr:8983/solr/core" {
		t.Errorf("solr url = %q", cfg.Solr.URL)
	}
	if cfg.Schema.Path != "fallback.yaml" {
		t.Errorf("schema path = %q, want default", cfg.Schema.Path)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 99999
solr:
  url: http://localhost:8983/solr/sources
schema:
  path: schema.yaml
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestLoad_MissingSolrURL(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 8080
schema:
  path: schema.yaml
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing solr url")
	}
}

func TestLoad_MissingSchemaPath(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 8080
solr:
  url: http://localhost:8983/solr/sources
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing schema path")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
