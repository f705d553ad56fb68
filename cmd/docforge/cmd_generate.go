package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docforge/internal/provider"
)

var (
	generateVars  []string
	generateStore bool
	generateAsKey string
)

var generateCmd = &cobra.Command{
	Use:   "generate <template-id>",
	Short: "Render a template, call the generation provider, and score the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(generateVars)
		if err != nil {
			return err
		}

		pipeline, documents, cleanup, err := newPipeline(true)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := pipeline.Generate(cmd.Context(), args[0], vars, documents)
		if err != nil {
			return err
		}

		logger.Info("generation complete",
			zap.String("request_id", result.RequestID),
			zap.String("template", result.TemplateID),
			zap.Int("quality_score", result.QualityScore),
			zap.Int("warnings", len(result.Warnings)))

		for _, warn := range result.Warnings {
			logger.Warn("quality warning", zap.String("warning", warn))
		}

		// Generated documents become dependency content for later templates
		if generateStore {
			key := generateAsKey
			if key == "" {
				key = result.TemplateID
			}
			sqlite, ok := documents.(*provider.SQLiteContentProvider)
			if !ok {
				return fmt.Errorf("--store requires the SQLite document database")
			}
			if err := sqlite.Store(cmd.Context(), key, result.Content); err != nil {
				return err
			}
			logger.Info("document stored", zap.String("document_key", key))
		}

		fmt.Println(result.Content)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringArrayVar(&generateVars, "var", nil, "project variable KEY=VALUE (repeatable)")
	generateCmd.Flags().BoolVar(&generateStore, "store", false, "store the generated content as a document")
	generateCmd.Flags().StringVar(&generateAsKey, "as", "", "document key to store under (defaults to template id)")
	rootCmd.AddCommand(generateCmd)
}
