package ember

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Enabled bool   `json:"enabled"`
}

// Address returns the host:port pair the server listens on
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingSinkConfig holds the settings for the optional file log sink. An
// empty FilePath leaves the console as the only sink.
type LoggingSinkConfig struct {
	FilePath string `json:"file_path"`
	Format   string `json:"format"`
	Level    string `json:"level"`
	MaxSize  int64  `json:"max_size"`
	MaxFiles int    `json:"max_files"`
}

// AppConfig is the resolved bootstrap configuration, loaded once at process
// start and treated as immutable for the remainder of the run.
type AppConfig struct {
	SourceDirs         []string          `json:"source_dirs"`
	FileExtension      string            `json:"file_extension"`
	PropertiesFilePath string            `json:"properties_file_path"`
	TypeCheckingMode   TypeCheckingMode  `json:"type_checking_mode"`
	Server             ServerConfig      `json:"server"`
	Logging            LoggingSinkConfig `json:"logging"`
}

// DefaultAppConfig returns the configuration used when no file overrides it
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		SourceDirs:         []string{"."},
		FileExtension:      ".go",
		PropertiesFilePath: "application-properties.json",
		TypeCheckingMode:   TypeCheckingStrict,
		Server: ServerConfig{
			Host:    "127.0.0.1",
			Port:    8080,
			Enabled: true,
		},
		Logging: LoggingSinkConfig{
			Format:   "text",
			Level:    "info",
			MaxSize:  10 * 1024 * 1024,
			MaxFiles: 5,
		},
	}
}

// LoadAppConfig reads the app-config file into a snapshot, applying defaults
// for anything the file leaves unset
func LoadAppConfig(path string) (*AppConfig, error) {
	config := DefaultAppConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read app config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse app config %s: %w", path, err)
	}
	return config, nil
}

const appConfigTemplate = `{
  "source_dirs": ["."],
  "file_extension": ".go",
  "properties_file_path": "application-properties.json",
  "type_checking_mode": "strict",
  "server": {
    "host": "127.0.0.1",
    "port": 8080,
    "enabled": true
  },
  "logging": {
    "file_path": "",
    "format": "text",
    "level": "info",
    "max_size": 10485760,
    "max_files": 5
  }
}
`

const propertiesTemplate = `{
  "app": {
    "name": "ember-app"
  }
}
`

// WriteConfigTemplate writes a starter app-config file if none exists
func WriteConfigTemplate(path string) error {
	return writeTemplate(path, appConfigTemplate)
}

// WritePropertiesTemplate writes a starter properties file if none exists
func WritePropertiesTemplate(path string) error {
	return writeTemplate(path, propertiesTemplate)
}

func writeTemplate(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write template %s: %w", path, err)
	}
	return nil
}
