package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

var (
	searchKind   string
	searchFields []string
	searchPage   int
	searchQuery  string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a paginated LIS search",
	Long: `Runs a gene or trait search against the LIS GraphQL API.

Fields are given as name=value pairs; a repeated name keeps its last
value. With --query the search starts from a query string instead, and
only runs when one of the kind's required field groups is present.

Examples:
  lis-search search --kind genes -f genus=Glycine -f species=max
  lis-search search --kind genes -f description=kinase --page 3
  lis-search search --kind traits --query "name=seed&page=2"`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", string(domain.SearchKindGenes), "search kind (genes, traits)")
	searchCmd.Flags().StringArrayVarP(&searchFields, "field", "f", nil, "form field as name=value (repeatable)")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "page to show")
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search from a query string")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.MarkFlagsMutuallyExclusive("field", "query")
	rootCmd.AddCommand(searchCmd)
}

// parseFields converts name=value flags to form fields in order.
func parseFields(pairs []string) (domain.FormFields, error) {
	fields := make(domain.FormFields, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: field %q is not name=value", domain.ErrInvalidInput, pair)
		}
		fields = append(fields, domain.FormField{Name: name, Value: value})
	}
	return fields, nil
}

func runSearch(cmd *cobra.Command, _ []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	kind, err := parseKind(searchKind)
	if err != nil {
		return err
	}
	fields, err := parseFields(searchFields)
	if err != nil {
		return err
	}
	if searchPage < 1 {
		return fmt.Errorf("%w: page must be at least 1", domain.ErrInvalidInput)
	}
	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	table := settings.Search(kind).Table

	opts := searchOptions{fields: fields, query: searchQuery, page: searchPage, json: searchJSON}
	switch kind {
	case domain.SearchKindTraits:
		return searchWith(cmd, s.Traits, s.Locations[kind], table, opts)
	default:
		return searchWith(cmd, s.Genes, s.Locations[kind], table, opts)
	}
}

// searchOptions selects how a search starts and prints.
type searchOptions struct {
	fields domain.FormFields
	query  string
	page   int
	json   bool
}

func searchWith[T any](
	cmd *cobra.Command,
	ctrl driving.PaginatedSearchController[T],
	location driving.Location,
	table domain.TableConfig,
	opts searchOptions,
) error {
	if ctrl == nil {
		return fmt.Errorf("search not configured")
	}
	if err := runPaginated(cmd.Context(), ctrl, location, opts); err != nil {
		return err
	}
	return printSnapshot(cmd, ctrl.Snapshot(), table, opts.json)
}

func runPaginated[T any](
	ctx context.Context,
	ctrl driving.PaginatedSearchController[T],
	location driving.Location,
	opts searchOptions,
) error {
	if opts.query != "" {
		if location == nil {
			return fmt.Errorf("no location for query %q", opts.query)
		}
		if err := location.Navigate(strings.TrimPrefix(opts.query, "?")); err != nil {
			return err
		}
		return ctrl.AutoSubmit(ctx)
	}

	if err := ctrl.Submit(ctx, opts.fields); err != nil {
		return err
	}
	if opts.page > 1 && ctrl.Snapshot().State == domain.StateSuccess {
		return ctrl.ChangePage(ctx, opts.page)
	}
	return nil
}
