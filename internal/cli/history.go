package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"textsum/internal/domain"
	"textsum/internal/port"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect saved summaries",
	Long: `List, show, delete and clear summaries recorded by summarize, batch and watch.

Examples:
  textsum history list -n 5
  textsum history show 3f2a...
  textsum history delete 3f2a...
  textsum history clear`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent summaries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(st port.HistoryStore) error {
			records, err := st.List(historyLimit)
			if err != nil {
				return err
			}
			if historyJSON {
				return printJSON(records)
			}
			if len(records) == 0 {
				fmt.Println("No summaries recorded.")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%s  %s  %-3s %6d chars  %s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.ModelKey.Language, r.InputChars, r.Source)
			}
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one saved summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(st port.HistoryStore) error {
			r, err := st.Get(args[0])
			if err != nil {
				return err
			}
			if historyJSON {
				return printJSON(r)
			}
			printRecord(r)
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete saved summaries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(st port.HistoryStore) error {
			for _, id := range args {
				if err := st.Delete(id); err != nil {
					return err
				}
				fmt.Printf("Deleted %s\n", id)
			}
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(st port.HistoryStore) error {
			n, err := clearHistory(st)
			if err != nil {
				return err
			}
			fmt.Printf("Cleared %d summaries\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd)
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of records (0 for all)")
}

func withHistory(fn func(port.HistoryStore) error) error {
	st, err := openHistory(GetConfig(), GetRootDir(), logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	if st == nil {
		return fmt.Errorf("history is disabled (history.enabled: false)")
	}
	defer st.Close()
	return fn(st)
}

// clearHistory empties st and returns how many records it held.
func clearHistory(st port.HistoryStore) (int, error) {
	records, err := st.List(0)
	if err != nil {
		return 0, err
	}
	if err := st.Clear(); err != nil {
		return 0, err
	}
	return len(records), nil
}

func printRecord(r domain.SummaryRecord) {
	fmt.Printf("ID:       %s\n", r.ID)
	fmt.Printf("Source:   %s\n", r.Source)
	fmt.Printf("Created:  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Model:    %s\n", r.ModelKey)
	fmt.Printf("Strategy: %s\n", r.Strategy)
	fmt.Printf("Input:    %d chars, %d chunks\n", r.InputChars, r.ChunksUsed)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Println(r.Summary)
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
