package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"textsum/internal/adapter/detector"
	"textsum/internal/adapter/inference"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported language codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, code := range detector.SupportedLanguages() {
			fmt.Printf("%-4s %s\n", code, inference.LanguageName(code))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
