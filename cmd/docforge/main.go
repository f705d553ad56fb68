package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docforge/internal/config"
	"docforge/internal/logging"
	"docforge/internal/prompt"
	"docforge/internal/provider"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docforge",
	Short: "docforge - template and context resolution engine for document generation",
	Long: `docforge compiles document-generation prompts from data-driven templates.

Templates declare variables, conditional fragments, and injection points whose
dependencies are resolved from previously generated documents, aggregated
under a character budget, and substituted into the prompt body. The rendered
prompt is handed to the configured generation provider and the result is
scored against the template's quality criteria.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		zapCfg.Encoding = "console"
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		if err := logging.Initialize(cfg.Logging.Dir, cfg.Logging.Debug, cfg.Logging.Level); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "docforge.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// newPipeline loads the template store and wires the engine from config.
func newPipeline(withGenerator bool) (*prompt.Pipeline, prompt.ContentProvider, func(), error) {
	store := prompt.NewStore()
	if _, err := store.LoadDirectory(cfg.TemplateDir); err != nil {
		return nil, nil, nil, err
	}
	logger.Debug("Templates loaded", zap.Int("count", store.Len()))

	documents, err := provider.OpenSQLiteContentProvider(cfg.DocumentDB)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() { _ = documents.Close() }

	opts := []prompt.PipelineOption{prompt.WithCacheSize(cfg.CacheSize)}
	if withGenerator {
		generator, err := provider.NewGenerator(cfg.Provider)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		genOpts := prompt.GenerateOptions{Model: cfg.Provider.Model}
		opts = append(opts,
			prompt.WithGenerator(generator, genOpts),
			prompt.WithSummarizer(provider.NewLLMSummarizer(generator, genOpts)),
		)
	}

	return prompt.NewPipeline(store, opts...), documents, cleanup, nil
}

// parseVars turns repeated --var KEY=VALUE flags into a variable map.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := splitPair(pair)
		if !ok {
			return nil, fmt.Errorf("invalid --var %q: expected KEY=VALUE", pair)
		}
		vars[key] = value
	}
	return vars, nil
}

func splitPair(pair string) (string, string, bool) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '=' {
			return pair[:i], pair[i+1:], i > 0
		}
	}
	return "", "", false
}
