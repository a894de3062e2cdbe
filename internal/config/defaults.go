package config

const (
	defaultProjectsDir    = "~/.local/share/overdub/projects"
	defaultExportDir      = "~/.local/share/overdub/exports"
	defaultLogDir         = "~/.local/share/overdub/logs"
	defaultLegacyCacheDir = "~/.ai_dubbing_cache"

	defaultRetentionMaxAgeDays = 90
	defaultRetentionMaxCount   = 50

	defaultExportAudioFormat   = "wav"
	defaultExportMinAudioBytes = 100

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectsDir:    defaultProjectsDir,
			ExportDir:      defaultExportDir,
			LogDir:         defaultLogDir,
			LegacyCacheDir: defaultLegacyCacheDir,
		},
		Retention: Retention{
			MaxAgeDays: defaultRetentionMaxAgeDays,
			MaxCount:   defaultRetentionMaxCount,
		},
		Export: Export{
			AudioFormat:   defaultExportAudioFormat,
			MinAudioBytes: defaultExportMinAudioBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
