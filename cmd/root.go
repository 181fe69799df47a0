package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-sieve/internal/ai"
	"github.com/spigell/resume-sieve/internal/ai/gemini"
	"github.com/spigell/resume-sieve/internal/ai/openai"
	"github.com/spigell/resume-sieve/internal/similarity"
)

const (
	app       = "resume-sieve"
	envPrefix = "RESUME_SIEVE"

	defaultPageSize     = 10
	defaultMaxLogLength = 200
)

type Config struct {
	AI          AIConfig     `mapstructure:"ai"`
	Ingest      IngestConfig `mapstructure:"ingest"`
	Browse      BrowseConfig `mapstructure:"browse"`
	MetricsFile string       `mapstructure:"metrics-file"`
}

type AIConfig struct {
	Provider     string       `mapstructure:"provider" validate:"oneof=gemini openai"`
	MaxLogLength int          `mapstructure:"max-log-length" validate:"gte=0"`
	Retry        RetryConfig  `mapstructure:"retry"`
	Gemini       GeminiConfig `mapstructure:"gemini"`
	OpenAI       OpenAIConfig `mapstructure:"openai"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max-attempts" validate:"gte=1,lte=10"`
	BaseDelay   time.Duration `mapstructure:"base-delay" validate:"gte=0"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url" validate:"omitempty,url"`
}

type IngestConfig struct {
	Overwrite bool `mapstructure:"overwrite"`
}

type BrowseConfig struct {
	PageSize            int     `mapstructure:"page-size" validate:"gte=1,lte=100"`
	SimilarityThreshold float64 `mapstructure:"similarity-threshold" validate:"gte=0,lte=1"`
	Sort                string  `mapstructure:"sort" validate:"oneof=recent score experience name_asc name_desc"`
}

// Policy converts the retry section into the extraction retry policy.
func (c RetryConfig) Policy() ai.Policy {
	policy := ai.DefaultPolicy()
	policy.MaxAttempts = c.MaxAttempts
	policy.BaseDelay = c.BaseDelay
	return policy
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-sieve parses resumes into structured candidate records and helps to search through them",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-sieve.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only run needs a config.
	if runCmd.CalledAs() == "" {
		return
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig loads defaults, the environment and the config file into v. A missing
// default config file is fine; an explicitly given one must exist.
func readConfig(v *viper.Viper, file string) error {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

// setDefaults registers every key so that environment overrides are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", gemini.ProviderName)
	v.SetDefault("ai.max-log-length", defaultMaxLogLength)
	v.SetDefault("ai.retry.max-attempts", ai.DefaultMaxAttempts)
	v.SetDefault("ai.retry.base-delay", ai.DefaultBaseDelay)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", gemini.DefaultModel)
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.model", openai.DefaultModel)
	v.SetDefault("ai.openai.base-url", "")
	v.SetDefault("ingest.overwrite", false)
	v.SetDefault("browse.page-size", defaultPageSize)
	v.SetDefault("browse.similarity-threshold", similarity.DefaultThreshold)
	v.SetDefault("browse.sort", "recent")
	v.SetDefault("metrics-file", "")
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
