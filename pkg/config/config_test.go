package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type validated struct {
	Port int `yaml:"port"`
}

var errBadPort = errors.New("port out of range")

func (v *validated) Validate() error {
	if v.Port <= 0 {
		return errBadPort
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "name: laguz\nport: 9090\n")
	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "laguz" || cfg.Port != 9090 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_CONFIG_NAME", "expanded")
	path := writeFile(t, "name: ${TEST_CONFIG_NAME}\n")
	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "expanded" {
		t.Errorf("name = %q", cfg.Name)
	}
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg := sample{Name: "default", Port: 8080}
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "default" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "name: [unclosed\n")
	var cfg sample
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_ValidatorRuns(t *testing.T) {
	path := writeFile(t, "port: -1\n")
	var cfg validated
	if err := Load(path, &cfg); !errors.Is(err, errBadPort) {
		t.Errorf("err = %v, want errBadPort", err)
	}
}
