package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRetention()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ProjectsDir) == "" {
		c.Paths.ProjectsDir = defaultProjectsDir
	}
	if c.Paths.ProjectsDir, err = expandPath(c.Paths.ProjectsDir); err != nil {
		return fmt.Errorf("paths.projects_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LegacyCacheDir) != "" {
		if c.Paths.LegacyCacheDir, err = expandPath(c.Paths.LegacyCacheDir); err != nil {
			return fmt.Errorf("paths.legacy_cache_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeRetention() {
	if c.Retention.MaxAgeDays == 0 {
		c.Retention.MaxAgeDays = defaultRetentionMaxAgeDays
	}
	if c.Retention.MaxCount == 0 {
		c.Retention.MaxCount = defaultRetentionMaxCount
	}
}

func (c *Config) normalizeExport() {
	c.Export.AudioFormat = strings.ToLower(strings.TrimSpace(c.Export.AudioFormat))
	if c.Export.AudioFormat == "" {
		c.Export.AudioFormat = defaultExportAudioFormat
	}
	if c.Export.MinAudioBytes == 0 {
		c.Export.MinAudioBytes = defaultExportMinAudioBytes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
