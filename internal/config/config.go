// Package config centralizes all application configuration into typed structs.
//
// Go Learning Note — Configuration Management:
// NewDefaultConfig gives every setting a sensible value in code, and Load
// overlays an optional YAML file and CURB_* environment variables on top of
// it using "github.com/spf13/viper". Using typed structs (not raw
// strings/maps) gives you compile-time safety and IDE autocompletion.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config is the top-level configuration container.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Index   IndexConfig   `mapstructure:"index"`
	Search  SearchConfig  `mapstructure:"search"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
//
// Go Learning Note — time.Duration:
// Go uses time.Duration (an int64 of nanoseconds) instead of raw integers for
// timeouts and intervals. viper decodes strings such as "10s" into it.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// IndexConfig controls bucketing. Precision 4 cells are roughly 39 km x
// 19.5 km: a city falls into a handful of buckets and a 500 m search
// touches one to four of them.
type IndexConfig struct {
	Precision        int `mapstructure:"precision"`
	MaxCoverageCells int `mapstructure:"max_coverage_cells"`
}

// SearchConfig holds the defaults applied when a search omits them.
type SearchConfig struct {
	RadiusMeters  float64 `mapstructure:"radius_meters"`
	TopK          int     `mapstructure:"top_k"`
	MergeAdjacent bool    `mapstructure:"merge_adjacent"`
}

// ScoringConfig weights the two factors of a curb score.
type ScoringConfig struct {
	DesignationWeight float64 `mapstructure:"designation_weight"`
	DistanceWeight    float64 `mapstructure:"distance_weight"`
}

// DatasetConfig points at the initial curb records.
type DatasetConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NewDefaultConfig returns a Config populated with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Index: IndexConfig{
			Precision:        4,
			MaxCoverageCells: 1 << 16,
		},
		Search: SearchConfig{
			RadiusMeters:  500,
			TopK:          10,
			MergeAdjacent: true,
		},
		Scoring: ScoringConfig{
			DesignationWeight: 1,
			DistanceWeight:    1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from an optional YAML file and the environment.
// An empty path looks for curbfinder.yaml in the working directory; a
// missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("curbfinder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CURB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, NewDefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the index cannot run with.
func (c *Config) Validate() error {
	if c.Index.Precision < 1 || c.Index.Precision > 12 {
		return eris.Errorf("config: index.precision %d out of range [1, 12]", c.Index.Precision)
	}
	if c.Search.RadiusMeters <= 0 {
		return eris.Errorf("config: search.radius_meters must be positive, got %v", c.Search.RadiusMeters)
	}
	if c.Search.TopK <= 0 {
		return eris.Errorf("config: search.top_k must be positive, got %d", c.Search.TopK)
	}
	return nil
}

// setDefaults registers every default with viper so environment variables
// can override keys that appear in no config file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("index.precision", d.Index.Precision)
	v.SetDefault("index.max_coverage_cells", d.Index.MaxCoverageCells)
	v.SetDefault("search.radius_meters", d.Search.RadiusMeters)
	v.SetDefault("search.top_k", d.Search.TopK)
	v.SetDefault("search.merge_adjacent", d.Search.MergeAdjacent)
	v.SetDefault("scoring.designation_weight", d.Scoring.DesignationWeight)
	v.SetDefault("scoring.distance_weight", d.Scoring.DistanceWeight)
	v.SetDefault("dataset.path", d.Dataset.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
