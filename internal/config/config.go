// Package config holds run settings unmarshalled from Viper.
//
// Values are layered flag > environment (TSVGEN_*) > config file > default.
// The config file is YAML; --config names it, otherwise tsvgen.yaml in the
// working directory is used when present.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"tsvgen/internal/errs"
	"tsvgen/internal/spread"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "TSVGEN"

// Keys shared with the CLI flags.
const (
	KeySpread         = "spread"
	KeyTSVName        = "tsv-name"
	KeyPolicy         = "policy"
	KeySourceDir      = "source-dir"
	KeySchemaDir      = "schema-dir"
	KeySeqLength      = "seq-length"
	KeyLineWidth      = "line-width"
	KeyEntriesPerFile = "entries-per-file"
	KeySeed           = "seed"
	KeySummary        = "summary"
	KeyQuiet          = "quiet"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
	KeyLogFile        = "log-file"
	KeyLogMaxSize     = "log-max-size"
	KeyLogMaxBackups  = "log-max-backups"
	KeyLogMaxAge      = "log-max-age"
)

// Defaults.
const (
	DefaultTSVName   = "generated_data.tsv"
	DefaultSchemaDir = "schemas"
	DefaultSeqLength = 300
	DefaultLineWidth = 60
	DefaultSummary   = "text"
)

// LogConfig controls the zap logger.
type LogConfig struct {
	// debug, info, warn, error
	Level string `mapstructure:"log-level"`
	// console or json
	Format string `mapstructure:"log-format"`
	// rotating log file; empty logs to stderr only
	File       string `mapstructure:"log-file"`
	MaxSize    int    `mapstructure:"log-max-size"` // MB
	MaxBackups int    `mapstructure:"log-max-backups"`
	MaxAge     int    `mapstructure:"log-max-age"` // days
}

// Config is the root-level settings struct: a mix of the config file, the
// environment and command line flags.
type Config struct {
	// FASTA-bearing records; SpreadSet is false when nothing set it
	Spread    int  `mapstructure:"spread"`
	SpreadSet bool `mapstructure:"-"`

	TSVName   string `mapstructure:"tsv-name"`
	Policy    string `mapstructure:"policy"`
	SourceDir string `mapstructure:"source-dir"`
	SchemaDir string `mapstructure:"schema-dir"`

	// synthesized FASTA shape
	SeqLength      int `mapstructure:"seq-length"`
	LineWidth      int `mapstructure:"line-width"`
	EntriesPerFile int `mapstructure:"entries-per-file"`

	// 0 picks a time-based seed
	Seed uint64 `mapstructure:"seed"`

	Summary string `mapstructure:"summary"`
	Quiet   bool   `mapstructure:"quiet"`

	Log LogConfig `mapstructure:",squash"`
}

// New returns a Viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyTSVName, DefaultTSVName)
	v.SetDefault(KeyPolicy, spread.DefaultPolicy)
	v.SetDefault(KeySourceDir, "")
	v.SetDefault(KeySchemaDir, DefaultSchemaDir)
	v.SetDefault(KeySeqLength, DefaultSeqLength)
	v.SetDefault(KeyLineWidth, DefaultLineWidth)
	v.SetDefault(KeyEntriesPerFile, 1)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeySummary, DefaultSummary)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSize, 10)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAge, 28)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// no default for spread, so IsSet tells "given" from "unset"
	_ = v.BindEnv(KeySpread)
	return v
}

// Load reads the config file (if any) and unmarshals v. file may be empty.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errs.Configf("read config %s: %v", file, err)
		}
	} else {
		v.SetConfigName("tsvgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, errs.Configf("read config: %v", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errs.Configf("unable to decode config: %v", err)
	}
	c.SpreadSet = v.IsSet(KeySpread)
	return c, nil
}
