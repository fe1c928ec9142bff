package config

import (
	"os"
	"testing"
)

type testConfig struct {
	Var1 string `envconfig:"VAR1"`
	Var2 string `envconfig:"VAR2"`
}

func TestLoadConfigFiles(t *testing.T) {
	envContent := "VAR1=hello\nVAR2=world\n"
	tmpFile := "test.env"
	if err := os.WriteFile(tmpFile, []byte(envContent), 0644); err != nil {
		t.Fatalf("could not create temporary .env: %v", err)
	}
	defer os.Remove(tmpFile)

	os.Unsetenv("VAR1")
	os.Unsetenv("VAR2")

	var cfg testConfig
	err := LoadConfigFiles(&ConfigFile{Path: tmpFile, Config: &cfg})
	if err != nil {
		t.Fatalf("LoadConfigFiles returned error: %v", err)
	}

	if cfg.Var1 != "hello" {
		t.Errorf("Var1 = %q, want hello", cfg.Var1)
	}
	if cfg.Var2 != "world" {
		t.Errorf("Var2 = %q, want world", cfg.Var2)
	}
}

func TestLoadConfigs(t *testing.T) {
	os.Setenv("VAR1", "foo")
	os.Setenv("VAR2", "bar")
	defer os.Unsetenv("VAR1")
	defer os.Unsetenv("VAR2")

	var cfg testConfig
	if err := LoadConfigs(&cfg); err != nil {
		t.Fatalf("LoadConfigs returned error: %v", err)
	}

	if cfg.Var1 != "foo" {
		t.Errorf("Var1 = %q, want foo", cfg.Var1)
	}
	if cfg.Var2 != "bar" {
		t.Errorf("Var2 = %q, want bar", cfg.Var2)
	}
}

func TestLoadConfigFiles_FileNotFound(t *testing.T) {
	var cfg testConfig
	err := LoadConfigFiles(&ConfigFile{Path: "nonexistent.env", Config: &cfg})
	if err == nil {
		t.Error("expected an error for a missing file, got nil")
	}
}
