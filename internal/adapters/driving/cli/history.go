package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

var (
	historyKind  string
	historyLimit int
	backKind     string
	backJSON     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent query strings",
	Long: `Lists the query strings recorded by previous searches, newest first.

Every accepted search request is recorded. Use "lis-search search --query"
to run one of them again.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear recorded query strings",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var backCmd = &cobra.Command{
	Use:   "back",
	Short: "Return to the previous query string",
	Long: `Moves the location of a search kind to the most recent recorded query
string that differs from the current one, then runs it. A running TUI
watching the location follows.`,
	Args: cobra.NoArgs,
	RunE: runBack,
}

func init() {
	historyCmd.PersistentFlags().StringVarP(&historyKind, "kind", "k", "", "search kind (default all)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)

	backCmd.Flags().StringVarP(&backKind, "kind", "k", string(domain.SearchKindGenes), "search kind (genes, traits)")
	backCmd.Flags().BoolVar(&backJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(backCmd)
}

func optionalKind(value string) (domain.SearchKind, error) {
	if value == "" {
		return "", nil
	}
	return parseKind(value)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	if s.History == nil {
		return errors.New("history not configured")
	}
	kind, err := optionalKind(historyKind)
	if err != nil {
		return err
	}

	entries, err := s.History.List(cmd.Context(), kind, historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("No history.")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Kind.String(), e.Query}
	}
	writeTable(cmd.OutOrStdout(), []string{"When", "Kind", "Query"}, rows)
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	if s.History == nil {
		return errors.New("history not configured")
	}
	kind, err := optionalKind(historyKind)
	if err != nil {
		return err
	}
	if err := s.History.Clear(cmd.Context(), kind); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	if kind == "" {
		cmd.Println("Cleared all history.")
	} else {
		cmd.Printf("Cleared %s history.\n", kind)
	}
	return nil
}

func runBack(cmd *cobra.Command, _ []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	kind, err := parseKind(backKind)
	if err != nil {
		return err
	}
	location := s.Locations[kind]
	if location == nil || s.History == nil {
		return errors.New("history not configured")
	}

	entries, err := s.History.List(cmd.Context(), kind, 0)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	current := location.RawQuery()
	target := ""
	for _, e := range entries {
		if e.Query != current {
			target = e.Query
			break
		}
	}
	if target == "" {
		cmd.Println("No earlier query string.")
		return nil
	}

	cmd.Printf("Back to ?%s\n", target)

	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	table := settings.Search(kind).Table
	opts := searchOptions{query: target, json: backJSON}
	switch kind {
	case domain.SearchKindTraits:
		return searchWith(cmd, s.Traits, location, table, opts)
	default:
		return searchWith(cmd, s.Genes, location, table, opts)
	}
}
