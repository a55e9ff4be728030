package cli

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"textsum/internal/adapter/strategy"
	"textsum/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

var (
	promptPreset string
	promptList   bool
	promptText   string
)

var promptCmd = &cobra.Command{
	Use:   "prompt [file|-]",
	Short: "Preview the prompt the prompted strategy sends",
	Long: `Render a built-in or configured prompt template around the input, exactly as
the prompted strategy passes it to the model for short input.

Examples:
  textsum prompt --list
  textsum prompt notes.txt --preset bullets`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVar(&promptPreset, "preset", "", "built-in template name (default: configured template)")
	promptCmd.Flags().BoolVar(&promptList, "list", false, "list built-in templates")
	promptCmd.Flags().StringVarP(&promptText, "text", "t", "", "text instead of a file")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	if promptList {
		names, err := presetNames()
		if err != nil {
			return err
		}
		for _, name := range names {
			tmpl, _ := presetTemplate(name)
			fmt.Printf("%-10s %s\n", name, firstLine(tmpl))
		}
		return nil
	}

	tmpl := GetConfig().Summarize.PromptTemplate
	if promptPreset != "" {
		var err error
		if tmpl, err = presetTemplate(promptPreset); err != nil {
			return err
		}
	}

	text, _, err := readInput(args, promptText)
	if err != nil {
		return err
	}
	fmt.Println(strategy.Render(tmpl, text))
	return nil
}

// presetTemplate returns the embedded template called name.
func presetTemplate(name string) (string, error) {
	data, err := promptTemplates.ReadFile(path.Join("templates", name+".txt"))
	if err != nil {
		names, _ := presetNames()
		return "", domain.InvalidRequest("prompt", "unknown preset %q (have %s)", name, strings.Join(names, ", "))
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func presetNames() ([]string, error) {
	entries, err := promptTemplates.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".txt"))
	}
	sort.Strings(names)
	return names, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
