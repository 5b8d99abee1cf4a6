package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("DOCPRESS_TEST_NAME", "blog")
	p := writeConfig(t, "name: ${DOCPRESS_TEST_NAME}\nport: 9000\n")

	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "blog" || s.Port != 9000 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	p := writeConfig(t, "port: 1\n")
	var s sample
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("err = %v", err)
	}
}

func TestRead_KeepsDefaults(t *testing.T) {
	p := writeConfig(t, "name: x\n")
	s := sample{Port: 8080}
	if err := Read(p, &s); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if s.Port != 8080 {
		t.Errorf("port = %d, want default kept", s.Port)
	}
}

func TestReadOptional_Missing(t *testing.T) {
	s := sample{Port: 1}
	if err := ReadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &s); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if err := ReadOptional("", &s); err != nil {
		t.Fatalf("empty name: %v", err)
	}
	if s.Port != 1 {
		t.Errorf("target modified: %+v", s)
	}
}

func TestRead_BadYAML(t *testing.T) {
	p := writeConfig(t, "name: [unclosed\n")
	var s sample
	if err := Read(p, &s); err == nil {
		t.Fatal("expected parse error")
	}
}
