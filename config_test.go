package ember

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultAppConfig(t *testing.T) {
	config := DefaultAppConfig()

	if config.TypeCheckingMode != TypeCheckingStrict {
		t.Errorf("Expected strict by default, got %s", config.TypeCheckingMode)
	}
	if config.FileExtension != ".go" {
		t.Errorf("Expected .go extension by default, got %s", config.FileExtension)
	}
	if !config.Server.Enabled {
		t.Error("Expected server enabled by default")
	}
	if config.Server.Address() != "127.0.0.1:8080" {
		t.Errorf("Expected default address 127.0.0.1:8080, got %s", config.Server.Address())
	}
}

func TestLoadAppConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ember.json")
	content := `{
		"source_dirs": ["./app", "./lib"],
		"type_checking_mode": "basic",
		"server": {"host": "0.0.0.0", "port": 9000, "enabled": false}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if len(config.SourceDirs) != 2 {
		t.Errorf("Expected two source dirs, got %v", config.SourceDirs)
	}
	if config.TypeCheckingMode != TypeCheckingBasic {
		t.Errorf("Expected basic mode, got %s", config.TypeCheckingMode)
	}
	if config.Server.Address() != "0.0.0.0:9000" {
		t.Errorf("Expected overridden address, got %s", config.Server.Address())
	}
	if config.Server.Enabled {
		t.Error("Expected server disabled")
	}

	// untouched sections keep their defaults
	if config.FileExtension != ".go" {
		t.Errorf("Expected default extension to survive, got %s", config.FileExtension)
	}
	if config.PropertiesFilePath != "application-properties.json" {
		t.Errorf("Expected default properties path to survive, got %s", config.PropertiesFilePath)
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	if _, err := LoadAppConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("Expected a missing config file to fail")
	}
}

func TestLoadAppConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ember.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Fatal("Expected malformed config to fail")
	}
}

func TestWriteConfigTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ember.json")

	if err := WriteConfigTemplate(path); err != nil {
		t.Fatalf("WriteConfigTemplate failed: %v", err)
	}

	// the generated template must load cleanly
	config, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("Generated template did not load: %v", err)
	}
	if config.TypeCheckingMode != TypeCheckingStrict {
		t.Errorf("Expected strict mode in template, got %s", config.TypeCheckingMode)
	}
}

func TestWriteTemplateSkipsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ember.json")
	original := []byte(`{"file_extension": ".custom"}`)
	if err := os.WriteFile(path, original, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if err := WriteConfigTemplate(path); err != nil {
		t.Fatalf("WriteConfigTemplate failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}
	if string(data) != string(original) {
		t.Error("Expected an existing file to be left untouched")
	}
}

func TestWritePropertiesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application-properties.json")

	if err := WritePropertiesTemplate(path); err != nil {
		t.Fatalf("WritePropertiesTemplate failed: %v", err)
	}

	c := NewContainer()
	if err := c.RegisterConfigBinding(&appProps{}); err != nil {
		t.Fatalf("Registration failed: %v", err)
	}
	if err := c.LoadProperties(path); err != nil {
		t.Fatalf("Generated properties did not load: %v", err)
	}
}
