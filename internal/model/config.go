package model

// DaemonConfig holds the daemon's runtime configuration, loaded by
// internal/lifecycle through internal/config per the documented priority
// chain (flag > env > file > defaults).
type DaemonConfig struct {
	Host               string `mapstructure:"host" json:"host" validate:"required"`
	Port               int    `mapstructure:"port" json:"port" validate:"gte=0,lte=65535"`
	DataDir            string `mapstructure:"data_dir" json:"data_dir"`
	MaxLogFilesPerJob  int    `mapstructure:"max_log_files_per_job" json:"max_log_files_per_job" validate:"gte=0"`
	MaxLogFileSize     int64  `mapstructure:"max_log_file_size" json:"max_log_file_size"`
	DefaultTimeoutSecs uint64 `mapstructure:"default_timeout_secs" json:"default_timeout_secs"`
	BroadcastCapacity  int    `mapstructure:"broadcast_capacity" json:"broadcast_capacity" validate:"gt=0"`
	PTYRows            int    `mapstructure:"pty_rows" json:"pty_rows" validate:"gt=0"`
	PTYCols            int    `mapstructure:"pty_cols" json:"pty_cols" validate:"gt=0"`

	// LogFormat and LogLevel back the ambient slog setup (internal/logger);
	// not present in the original Rust schema, added per the ambient
	// logging stack.
	LogFormat string `mapstructure:"log_format" json:"log_format" validate:"oneof=json text"`
	LogLevel  string `mapstructure:"log_level" json:"log_level"`
	// DaemonLogMaxBytes bounds the rolling daemon.log (default 1 GiB, see
	// internal/lifecycle.BuildLogger's rolling writer).
	DaemonLogMaxBytes int64 `mapstructure:"daemon_log_max_bytes" json:"daemon_log_max_bytes"`
}

// DefaultDaemonConfig returns the built-in DaemonConfig defaults. DataDir is left empty
// here; internal/lifecycle fills it in from the platform-specific resolution
// rule before this value reaches internal/config's Defaulter hook.
func DefaultDaemonConfig() DaemonConfig {
	return DaemonConfig{
		Host:               "127.0.0.1",
		Port:               8377,
		MaxLogFilesPerJob:  50,
		MaxLogFileSize:     10 * 1024 * 1024,
		DefaultTimeoutSecs: 0,
		BroadcastCapacity:  4096,
		PTYRows:            24,
		PTYCols:            80,
		LogFormat:          "json",
		LogLevel:           "info",
		DaemonLogMaxBytes:  1 << 30,
	}
}

// Default implements the internal/config Defaulter hook: any zero-valued
// field is filled from DefaultDaemonConfig.
func (c *DaemonConfig) Default() {
	d := DefaultDaemonConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.MaxLogFilesPerJob == 0 {
		c.MaxLogFilesPerJob = d.MaxLogFilesPerJob
	}
	if c.MaxLogFileSize == 0 {
		c.MaxLogFileSize = d.MaxLogFileSize
	}
	if c.BroadcastCapacity == 0 {
		c.BroadcastCapacity = d.BroadcastCapacity
	}
	if c.PTYRows == 0 {
		c.PTYRows = d.PTYRows
	}
	if c.PTYCols == 0 {
		c.PTYCols = d.PTYCols
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.DaemonLogMaxBytes == 0 {
		c.DaemonLogMaxBytes = d.DaemonLogMaxBytes
	}
}

// Validate implements the internal/config Validator hook. The struct tags
// above are enforced separately by internal/config's go-playground/
// validator pass; DataDir is intentionally not tag-validated here since
// internal/lifecycle fills it in from the platform-default resolution rule
// after this struct is loaded, not before.
func (c *DaemonConfig) Validate() error {
	return nil
}
