package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-sieve/internal/ai"
	"github.com/spigell/resume-sieve/internal/ai/gemini"
	"github.com/spigell/resume-sieve/internal/ai/openai"
	"github.com/spigell/resume-sieve/internal/extraction"
	"github.com/spigell/resume-sieve/internal/filtering"
	"github.com/spigell/resume-sieve/internal/logger"
	"github.com/spigell/resume-sieve/internal/matching"
	"github.com/spigell/resume-sieve/internal/metrics"
	"github.com/spigell/resume-sieve/internal/pipeline"
	"github.com/spigell/resume-sieve/internal/secrets"
	"github.com/spigell/resume-sieve/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run FILE...",
	Short: "Parse resumes and browse the extracted candidates",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.BoolP("overwrite", "o", false, "replace candidates parsed earlier from a file with the same name")
	flags.BoolP("non-interactive", "n", false, "print the results and exit without prompts")
	flags.String("name", "", "show candidates whose name contains the text")
	flags.String("skills", "", "comma separated skills every candidate must have")
	flags.String("location", "", "comma separated location terms")
	flags.String("seniority", "", "comma separated seniority terms")
	flags.String("sort", "", "order: recent, score, experience, name_asc, name_desc")
	flags.Int("page", 1, "page to show")
	flags.Int("page-size", 0, "candidates per page")
	flags.String("export-csv", "", "write the filtered candidates to a CSV file")
	flags.String("export-json-dir", "", "write every filtered candidate as JSON into the directory")
	flags.String("job-description", "", "rank candidates against the skills required by the description")
	flags.String("job-skills", "", "rank candidates against a comma separated list of required skills")
	flags.String("metrics-file", "", "write prometheus metrics in textfile format on exit")

	viper.BindPFlag("ingest.overwrite", flags.Lookup("overwrite"))
	viper.BindPFlag("browse.page-size", flags.Lookup("page-size"))
	viper.BindPFlag("browse.sort", flags.Lookup("sort"))
	viper.BindPFlag("metrics-file", flags.Lookup("metrics-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command, files []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-sieve", zap.String("version", version), zap.Int("files", len(files)))

	// do not bother error since the config was decoded already
	pretty, _ := json.MarshalIndent(redacted(*config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	metrics.Register()
	defer writeMetrics(config.MetricsFile, logger)

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the extraction service client", zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY/OPENAI_API_KEY or ai.<provider>.api-key-file in the configuration file"),
		)
	}

	client := extraction.NewClient(generator, config.AI.Retry.Policy(), logger, config.AI.MaxLogLength)
	candidates := store.New()

	results := pipeline.NewProcessor(client, candidates, logger).ProcessPaths(ctx, files, config.Ingest.Overwrite)
	printResults(cmd.OutOrStdout(), results)

	if ctx.Err() != nil {
		logger.Info("exiting", zap.String("reason", "interrupted"))
		return
	}

	s := newSession(candidates, matching.NewMatcher(client, logger, config.AI.MaxLogLength), config.Browse, cmd.OutOrStdout(), logger)
	s.view.criteria = filtering.Criteria{
		Name:      flagString(cmd, "name"),
		Skills:    flagString(cmd, "skills"),
		Location:  flagString(cmd, "location"),
		Seniority: flagString(cmd, "seniority"),
	}
	if page, err := cmd.Flags().GetInt("page"); err == nil {
		s.view.page = page - 1
	}

	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
	if nonInteractive {
		opts := batchOptions{
			exportCSV:      flagString(cmd, "export-csv"),
			exportJSONDir:  flagString(cmd, "export-json-dir"),
			jobDescription: flagString(cmd, "job-description"),
			jobSkills:      flagString(cmd, "job-skills"),
		}
		if err := s.batch(ctx, opts); err != nil {
			logger.Error("exiting", zap.Error(err))
		}
		return
	}

	if err := s.interactive(ctx); err != nil {
		logger.Error("exiting", zap.Error(err))
	}
}

func newGenerator(ctx context.Context, cfg AIConfig, logger *zap.Logger) (ai.Generator, error) {
	switch cfg.Provider {
	case openai.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}
		return openai.NewGenerator(openai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Logger:  logger,
		})
	case gemini.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}
		return gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, logger)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// redacted hides inline api keys before the config is logged.
func redacted(config Config) Config {
	if config.AI.Gemini.APIKey != "" {
		config.AI.Gemini.APIKey = "***"
	}
	if config.AI.OpenAI.APIKey != "" {
		config.AI.OpenAI.APIKey = "***"
	}
	return config
}

func writeMetrics(path string, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn("writing metrics", zap.String("filename", path), zap.Error(err))
		return
	}
	logger.Info("metrics written", zap.String("filename", path))
}

func flagString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}
