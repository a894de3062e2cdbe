package config

import (
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.ProjectsDir == "" {
		return fmt.Errorf("paths.projects_dir must be set")
	}
	if c.Retention.MaxAgeDays < 0 {
		return fmt.Errorf("retention.max_age_days must not be negative, got %d", c.Retention.MaxAgeDays)
	}
	if c.Retention.MaxCount < 0 {
		return fmt.Errorf("retention.max_count must not be negative, got %d", c.Retention.MaxCount)
	}
	if c.Export.AudioFormat != "wav" {
		return fmt.Errorf("export.audio_format: unsupported value %q (only \"wav\" is supported)", c.Export.AudioFormat)
	}
	if c.Export.MinAudioBytes < 0 {
		return fmt.Errorf("export.min_audio_bytes must not be negative, got %d", c.Export.MinAudioBytes)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
