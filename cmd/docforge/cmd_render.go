package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var renderVars []string

var renderCmd = &cobra.Command{
	Use:   "render <template-id>",
	Short: "Render a template to its final prompt without calling a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(renderVars)
		if err != nil {
			return err
		}

		pipeline, documents, cleanup, err := newPipeline(false)
		if err != nil {
			return err
		}
		defer cleanup()

		rendered, err := pipeline.Render(cmd.Context(), args[0], vars, documents)
		if err != nil {
			return err
		}

		for _, warn := range rendered.Warnings {
			logger.Warn("render warning", zap.String("warning", warn))
		}

		if rendered.System != "" {
			fmt.Printf("--- system ---\n%s\n\n", rendered.System)
		}
		fmt.Printf("--- prompt ---\n%s\n", rendered.Prompt)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringArrayVar(&renderVars, "var", nil, "project variable KEY=VALUE (repeatable)")
	rootCmd.AddCommand(renderCmd)
}
