package logger

// FileConfig controls the rotating log file. An empty Path disables file output.
type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDay  int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Config describes how the process logger is built.
type Config struct {
	Service  string     `mapstructure:"service"`
	Level    string     `mapstructure:"level"`    // debug|info|warn|error
	Encoding string     `mapstructure:"encoding"` // json|console
	Stdout   bool       `mapstructure:"stdout"`
	File     FileConfig `mapstructure:"file"`
}
