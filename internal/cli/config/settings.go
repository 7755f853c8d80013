package config

// FileName is the settings file looked up in the working directory.
const FileName = ".envlayer.yaml"

// EnvPrefix prefixes environment variables that override the file.
const EnvPrefix = "ENVLAYER_"

// Settings is the configuration for the envlayer CLI.
type Settings struct {
	// Where and how to load layers
	Directory   string   `koanf:"dir" yaml:"dir" json:"dir"`
	Environment string   `koanf:"env" yaml:"env" json:"env"`
	Prefixes    []string `koanf:"prefixes" yaml:"prefixes,omitempty" json:"prefixes"`
	Mode        string   `koanf:"mode" yaml:"mode,omitempty" json:"mode"` // empty means detect

	// Presentation
	Output   string `koanf:"output" yaml:"output" json:"output"` // table, json, yaml, dotenv
	LogLevel string `koanf:"log_level" yaml:"log_level" json:"log_level"`

	MetricsTextfile string `koanf:"metrics_textfile" yaml:"metrics_textfile,omitempty" json:"metrics_textfile"`
}

// Default returns the default CLI settings.
func Default() *Settings {
	return &Settings{
		Directory:   ".",
		Environment: "development",
		Output:      "table",
		LogLevel:    "warn",
	}
}
