package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"flowlane/internal/logger"
	"flowlane/internal/render"
)

type Config struct {
	SaveDirectory string            `yaml:"save_directory"`
	Confirmations bool              `yaml:"confirmations"`
	Log           logger.Config     `yaml:"log"`
	Canvas        render.Cell       `yaml:"canvas"`
	Export        render.PNGOptions `yaml:"export"`
}

func defaultConfig() *Config {
	config := &Config{
		Confirmations: true,
		Log:           logger.Config{Level: "info", Format: "console", Output: "none"},
		Canvas:        render.DefaultCell,
		Export:        render.DefaultPNGOptions(),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		// The terminal belongs to the editor, so logs go to a file.
		config.Log.Output = "file"
		config.Log.File = filepath.Join(homeDir, ".flowlane", "flowlane.log")
	}
	return config
}

// loadConfig reads ~/.flowlane.yaml, then .env, then FLOWLANE_* variables.
// Any failure leaves the defaults in place.
func loadConfig() *Config {
	_ = godotenv.Load()
	path := ""
	if homeDir, err := os.UserHomeDir(); err == nil {
		path = filepath.Join(homeDir, ".flowlane.yaml")
	}
	return loadConfigFrom(path)
}

func loadConfigFrom(path string) *Config {
	config := defaultConfig()
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			loaded := *config
			if err := yaml.Unmarshal(data, &loaded); err == nil {
				*config = loaded
			}
		}
	}

	config.SaveDirectory = getenv("FLOWLANE_SAVE_DIRECTORY", config.SaveDirectory)
	if v, err := strconv.ParseBool(os.Getenv("FLOWLANE_CONFIRMATIONS")); err == nil {
		config.Confirmations = v
	}
	config.Log.Level = getenv("FLOWLANE_LOG_LEVEL", config.Log.Level)
	config.Log.Format = getenv("FLOWLANE_LOG_FORMAT", config.Log.Format)
	config.Log.Output = getenv("FLOWLANE_LOG_OUTPUT", config.Log.Output)
	config.Log.File = getenv("FLOWLANE_LOG_FILE", config.Log.File)

	config.SaveDirectory = expandPath(config.SaveDirectory)
	config.Log.File = expandPath(config.Log.File)
	if config.Canvas.Width <= 0 || config.Canvas.Height <= 0 {
		config.Canvas = render.DefaultCell
	}
	return config
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func expandPath(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "~") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
		}
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	_ = os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
