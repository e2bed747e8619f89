package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ImageExt       []string `mapstructure:"image_extensions"`
	VideoExt       []string `mapstructure:"video_extensions"`
	ExifTool       string   `mapstructure:"exiftool"`
	ExifToolReader bool     `mapstructure:"exiftool_reader"`
	Jobs           int      `mapstructure:"jobs"`
	LogFile        string   `mapstructure:"log_file"`
}

var (
	defaultImageExt = []string{".jpg", ".jpeg", ".png", ".gif", ".heic", ".heif", ".tif", ".tiff", ".bmp", ".webp", ".dng", ".cr2", ".nef", ".arw"}
	defaultVideoExt = []string{".mp4", ".mov", ".avi", ".mkv", ".m4v", ".3gp", ".mts", ".webm", ".wmv"}
)

// LoadConfig reads snapsync.toml from the user config dir. A missing file is
// not an error; SNAPSYNC_* environment variables override file values.
func LoadConfig() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find user config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("snapsync")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(configDir, "snapsync"))

	v.SetEnvPrefix("snapsync")
	v.AutomaticEnv()

	v.SetDefault("image_extensions", defaultImageExt)
	v.SetDefault("video_extensions", defaultVideoExt)
	v.SetDefault("exiftool", "exiftool")
	v.SetDefault("exiftool_reader", true)
	v.SetDefault("jobs", 0)
	v.SetDefault("log_file", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ImageExt = normalizeExtensions(cfg.ImageExt)
	cfg.VideoExt = normalizeExtensions(cfg.VideoExt)

	return &cfg, nil
}

// DefaultConfig returns the built-in settings without reading any file.
func DefaultConfig() *Config {
	return &Config{
		ImageExt:       append([]string(nil), defaultImageExt...),
		VideoExt:       append([]string(nil), defaultVideoExt...),
		ExifTool:       "exiftool",
		ExifToolReader: true,
	}
}

// normalizeExtensions lower-cases entries and adds a missing leading dot,
// so "JPG" and ".jpg" in a config file mean the same thing.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
