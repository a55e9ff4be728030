package cli

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"textsum/internal/adapter/analyzer"
	"textsum/internal/adapter/chunker"
)

var (
	chunkText  string
	chunkChars int
	chunkJSON  bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file|-]",
	Short: "Show how a text is split into chunks",
	Long: `Split text on blank lines and pack paragraphs into chunks the way long
input is split before summarization.

Examples:
  textsum chunk book.txt
  textsum chunk book.txt --chars 2000 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
	chunkCmd.Flags().StringVarP(&chunkText, "text", "t", "", "text instead of a file")
	chunkCmd.Flags().IntVar(&chunkChars, "chars", 0, "maximum chunk length (default from config)")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output as JSON")
}

type chunkOutput struct {
	Index   int    `json:"index"`
	Chars   int    `json:"chars"`
	Content string `json:"content"`
}

func runChunk(cmd *cobra.Command, args []string) error {
	text, _, err := readInput(args, chunkText)
	if err != nil {
		return err
	}

	cfg := GetConfig()
	c := chunker.NewParagraphChunker(cfg.Summarize.ChunkChars)
	chunks := c.Split(text, chunkChars)

	if chunkJSON {
		out := make([]chunkOutput, 0, len(chunks))
		for _, ch := range chunks {
			out = append(out, chunkOutput{
				Index:   ch.SequenceIndex,
				Chars:   utf8.RuneCountInString(ch.Content),
				Content: ch.Content,
			})
		}
		output, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("%d chunks\n", len(chunks))
	for _, ch := range chunks {
		fmt.Printf("  [%d] %d chars: %s\n", ch.SequenceIndex, utf8.RuneCountInString(ch.Content), snippet(ch.Content, 60))
	}
	return nil
}

func snippet(s string, n int) string {
	s = analyzer.CollapseSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return analyzer.Prefix(s, n) + "..."
}
