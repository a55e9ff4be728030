package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	detectText   string
	detectScores bool
	detectJSON   bool
)

var detectCmd = &cobra.Command{
	Use:   "detect [file|-]",
	Short: "Detect the language of a text",
	Long: `Guess the language of a text from common marker words in its first
characters. Falls back to the configured default below the confidence threshold.

Examples:
  textsum detect article.txt
  echo "le chat et les chiens" | textsum detect - --scores`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringVarP(&detectText, "text", "t", "", "text instead of a file")
	detectCmd.Flags().BoolVar(&detectScores, "scores", false, "show per-language scores")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "output as JSON")
}

type languageScore struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	text, _, err := readInput(args, detectText)
	if err != nil {
		return err
	}

	d := newDetector(GetConfig(), logger)
	lang := d.Detect(text)

	var scores []languageScore
	for l, s := range d.Scores(text) {
		scores = append(scores, languageScore{Language: l, Score: s})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Language < scores[j].Language
	})

	if detectJSON {
		output, _ := json.MarshalIndent(struct {
			Language string          `json:"language"`
			Scores   []languageScore `json:"scores,omitempty"`
		}{lang, scores}, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(lang)
	if detectScores {
		for _, s := range scores {
			fmt.Printf("  %-4s %.3f\n", s.Language, s.Score)
		}
	}
	return nil
}
