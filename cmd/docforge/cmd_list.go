package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"docforge/internal/prompt"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := prompt.NewStore()
		if _, err := store.LoadDirectory(cfg.TemplateDir); err != nil {
			return err
		}

		summaries := store.List(listCategory)
		if len(summaries) == 0 {
			fmt.Println("no templates found")
			return nil
		}

		for _, s := range summaries {
			conditional := ""
			if s.HasConditions {
				conditional = " conditional"
			}
			fmt.Printf("%-32s %-20s %d injection points, %d required vars%s\n",
				s.ID, s.Category, s.Placeholders, s.RequiredVars, conditional)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "filter by category")
	rootCmd.AddCommand(listCmd)
}
