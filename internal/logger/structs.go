package logger

// Console configures logging to stdout / stderr.
type Console struct {
	Enabled bool `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	// Pretty switches from JSON lines to zerolog's human readable console output.
	Pretty bool `mapstructure:"pretty" toml:"pretty" json:"pretty"`
}

// Rotation holds lumberjack rotation limits for one log file.
type Rotation struct {
	MaxSize    int `mapstructure:"max_size" toml:"max_size" json:"max_size"`          // megabytes
	MaxBackups int `mapstructure:"max_backups" toml:"max_backups" json:"max_backups"` // files
	MaxAge     int `mapstructure:"max_age" toml:"max_age" json:"max_age"`             // days
}

// File configures rolling log files, one file for info and below and one for warn and above.
type File struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" toml:"path" json:"path"`

	InfoLog   string `mapstructure:"info" toml:"info" json:"info"`
	ErrorLog  string `mapstructure:"error" toml:"error" json:"error"`
	AccessLog string `mapstructure:"access" toml:"access" json:"access"`

	Rotation Rotation `mapstructure:"rotation" toml:"rotation" json:"rotation"`
}

// Log is the logger section of the settings file.
type Log struct {
	Level        string `mapstructure:"level" toml:"level" json:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"` //nolint:lll
	ReportCaller bool   `mapstructure:"report_caller" toml:"report_caller" json:"report_caller"`

	// AccessLog enables the preview server access log on the console.
	// Console.Enabled still has to be true.
	AccessLog bool `mapstructure:"access_log" toml:"access_log" json:"access_log"`

	ServiceName string `mapstructure:"service_name" toml:"service_name" json:"service_name"`

	Console Console `mapstructure:"console" toml:"console" json:"console"`
	File    File    `mapstructure:"file" toml:"file" json:"file"`
}
