package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	// viper keeps global state; start each test clean
	viper.Reset()

	// Save original directory
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	// Create temporary directory for testing
	tempDir, err := os.MkdirTemp("", "simdata-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	// Change to temp directory
	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), 512, cfg.Pipeline.MaxSequenceLength)
	assert.Equal(suite.T(), int64(0), cfg.Pipeline.PadID)
	assert.Equal(suite.T(), 32, cfg.Pipeline.BatchSize)
	assert.True(suite.T(), cfg.Pipeline.DoFilter)
	assert.True(suite.T(), cfg.Pipeline.ToDict)
	assert.False(suite.T(), cfg.Pipeline.DropRemainder)
	assert.Equal(suite.T(), 0, cfg.Pipeline.NumParallelCalls, "0 means let the engine choose")

	assert.Equal(suite.T(), "wordpiece", cfg.Tokenizer.Backend)
	assert.True(suite.T(), cfg.Tokenizer.Lowercase)
	assert.Equal(suite.T(), "sequence", cfg.Tokenizer.TextField)

	assert.Equal(suite.T(), "shards", cfg.Store.Kind)
	assert.Equal(suite.T(), 1, cfg.Store.ShardCount)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
pipeline:
  maxSequenceLength: 128
  padId: 0
  batchSize: 16
  doFilter: false
  bucketBoundaries: [16, 32, 64]

tokenizer:
  backend: "sugarme"
  vocabFile: "./vocab.txt"
  textField: "body"

store:
  kind: "sqlite"
  dsn: "file:test.db"
  shardCount: 4
`

	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), 128, cfg.Pipeline.MaxSequenceLength)
	assert.Equal(suite.T(), 16, cfg.Pipeline.BatchSize)
	assert.False(suite.T(), cfg.Pipeline.DoFilter)
	assert.Equal(suite.T(), []int{16, 32, 64}, cfg.Pipeline.BucketBoundaries)

	assert.Equal(suite.T(), "sugarme", cfg.Tokenizer.Backend)
	assert.Equal(suite.T(), "./vocab.txt", cfg.Tokenizer.VocabFile)
	assert.Equal(suite.T(), "body", cfg.Tokenizer.TextField)

	assert.Equal(suite.T(), "sqlite", cfg.Store.Kind)
	assert.Equal(suite.T(), "file:test.db", cfg.Store.DSN)
	assert.Equal(suite.T(), 4, cfg.Store.ShardCount)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	malformedContent := `
pipeline:
  maxSequenceLength: 128
  invalid_yaml: [unclosed bracket
`

	configFile := filepath.Join(suite.tempDir, "malformed.yaml")
	err := os.WriteFile(configFile, []byte(malformedContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestAppConfigGlobal() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Pipeline.MaxSequenceLength, AppConfig.Pipeline.MaxSequenceLength)
	assert.Equal(suite.T(), cfg.Store.Kind, AppConfig.Store.Kind)
}
