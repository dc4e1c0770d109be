// =============================================================================
// CSV Gratuity Report - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the application
// configuration.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults (see setDefaults)
//   2. The YAML config file (config.yaml, optional)
//   3. Environment variables prefixed with GRATUITY_
//      (e.g. GRATUITY_POLICIES_CELL=strict, GRATUITY_LOGGING_LEVEL=debug)
//
// A .env file in the working directory is loaded into the environment by the
// root command before Load is called.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/csv-gratuity-report/pkg/utils"
)

// =============================================================================
// POLICY NAMES
// =============================================================================

// Cell-level leniency policies. See aggregator.CellPolicy.
const (
	CellPolicyLenient = "lenient"
	CellPolicyStrict  = "strict"
)

// Record-level policies. See csvparser.RecordPolicy.
const (
	RecordPolicyWarn   = "warn"
	RecordPolicyStrict = "strict"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "GRATUITY"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	CSV      CSVSettings    `mapstructure:"csv" yaml:"csv"`
	Policies PolicySettings `mapstructure:"policies" yaml:"policies"`
	Output   OutputSettings `mapstructure:"output" yaml:"output"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// CSVSettings contains settings for parsing the input file.
type CSVSettings struct {
	// Delimiter is the single character separating fields.
	// Default: ","
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// LazyQuotes relaxes quoting rules: a quote may appear in an unquoted
	// field and a non-doubled quote may appear in a quoted field.
	// Default: false (standard CSV quoting)
	LazyQuotes bool `mapstructure:"lazy_quotes" yaml:"lazy_quotes"`
}

// PolicySettings selects the two independent leniency policies.
type PolicySettings struct {
	// Cell controls malformed numeric cells in the Total column.
	//   "lenient": the cell contributes 0 to the subtotal
	//   "strict" : the run aborts
	// Default: "lenient"
	Cell string `mapstructure:"cell" yaml:"cell"`

	// Record controls records the CSV reader cannot parse.
	//   "warn"  : the record is skipped and reported as a warning
	//   "strict": the run aborts
	// Default: "warn"
	Record string `mapstructure:"record" yaml:"record"`
}

// OutputSettings controls where reports are written.
type OutputSettings struct {
	// Suffix is appended to the input base name to build the default report
	// name, e.g. receipts.csv -> receipts_processed.xlsx.
	// Default: "_processed"
	Suffix string `mapstructure:"suffix" yaml:"suffix"`

	// OpenAfterWrite opens the report with the host default application
	// without asking.
	// Default: false
	OpenAfterWrite bool `mapstructure:"open_after_write" yaml:"open_after_write"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "warn"
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "console" or "json".
	// Default: "console"
	Format string `mapstructure:"format" yaml:"format"`

	// OutputPath is "stdout", "stderr" or a file path.
	// Default: "stderr"
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults are static; decoding them cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load loads the configuration.
//
// PARAMETERS:
//   - configPath: The path to the YAML config file. May be empty.
//   - required: When false, a missing config file is not an error and the
//     defaults (plus environment overrides) are used.
//
// RETURNS:
//   - A pointer to the validated Config.
//   - An error if the file cannot be read or parsed, or fails validation.
func Load(configPath string, required bool) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for every key so that environment
// variables are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.lazy_quotes", false)

	v.SetDefault("policies.cell", CellPolicyLenient)
	v.SetDefault("policies.record", RecordPolicyWarn)

	v.SetDefault("output.suffix", "_processed")
	v.SetDefault("output.open_after_write", false)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_path", "stderr")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return fmt.Errorf("csv.delimiter must be a single character, got %q", c.CSV.Delimiter)
	}
	switch c.CSV.Delimiter {
	case "\"", "\r", "\n":
		return fmt.Errorf("csv.delimiter %q is not allowed", c.CSV.Delimiter)
	}

	switch c.Policies.Cell {
	case CellPolicyLenient, CellPolicyStrict:
	default:
		return fmt.Errorf("policies.cell must be %q or %q, got %q", CellPolicyLenient, CellPolicyStrict, c.Policies.Cell)
	}

	switch c.Policies.Record {
	case RecordPolicyWarn, RecordPolicyStrict:
	default:
		return fmt.Errorf("policies.record must be %q or %q, got %q", RecordPolicyWarn, RecordPolicyStrict, c.Policies.Record)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}

// =============================================================================
// WRITING
// =============================================================================

// Write serializes the configuration as YAML to configPath.
//
// PARAMETERS:
//   - configPath: Destination file. Parent directories are created.
//   - force: Overwrite an existing file.
func Write(cfg *Config, configPath string, force bool) error {
	if !force && utils.FileExists(configPath) {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return err
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
