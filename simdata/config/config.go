package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/textforge/simcse-data/simdata"

	"github.com/spf13/viper"
)

// Config stores all configuration of the data pipeline.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Store     StoreConfig     `mapstructure:"store"`
}

// PipelineConfig stores batching and padding related configurations.
type PipelineConfig struct {
	MaxSequenceLength int   `mapstructure:"maxSequenceLength"`
	PadID             int64 `mapstructure:"padId"`
	BatchSize         int   `mapstructure:"batchSize"`
	DoFilter          bool  `mapstructure:"doFilter"`
	ToDict            bool  `mapstructure:"toDict"`
	DropRemainder     bool  `mapstructure:"dropRemainder"`
	NumParallelCalls  int   `mapstructure:"numParallelCalls"`
	BufferSize        int   `mapstructure:"bufferSize"`
	Verbose           bool  `mapstructure:"verbose"`
	BucketBoundaries  []int `mapstructure:"bucketBoundaries"`
}

// TokenizerConfig stores tokenizer selection and vocab details.
type TokenizerConfig struct {
	Backend   string `mapstructure:"backend"`
	VocabFile string `mapstructure:"vocabFile"`
	Lowercase bool   `mapstructure:"lowercase"`
	TextField string `mapstructure:"textField"`
}

// StoreConfig stores persisted record store details.
type StoreConfig struct {
	Kind       string `mapstructure:"kind"`
	Dir        string `mapstructure:"dir"`
	DSN        string `mapstructure:"dsn"`
	ShardCount int    `mapstructure:"shardCount"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("pipeline.maxSequenceLength", 512)
	viper.SetDefault("pipeline.padId", 0)
	viper.SetDefault("pipeline.batchSize", 32)
	viper.SetDefault("pipeline.doFilter", true)
	viper.SetDefault("pipeline.toDict", true)
	viper.SetDefault("pipeline.dropRemainder", false)
	viper.SetDefault("pipeline.numParallelCalls", 0)
	viper.SetDefault("pipeline.bufferSize", 0)
	viper.SetDefault("pipeline.verbose", false)

	viper.SetDefault("tokenizer.backend", "wordpiece")
	viper.SetDefault("tokenizer.lowercase", true)
	viper.SetDefault("tokenizer.textField", "sequence")

	viper.SetDefault("store.kind", internal.DefaultStoreKind)
	viper.SetDefault("store.dir", internal.DefaultRecordDir)
	viper.SetDefault("store.dsn", internal.DefaultStoreDSN)
	viper.SetDefault("store.shardCount", 1)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. pipeline.maxSequenceLength becomes PIPELINE_MAXSEQUENCELENGTH

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used. This is not an error
			// for the application to halt on.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
