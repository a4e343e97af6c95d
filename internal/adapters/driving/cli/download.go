package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

var (
	downloadKind   string
	downloadFields []string
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download every result of a search as TSV",
	Long: `Fetches all pages of a search and writes them to a TSV file in the
download directory, using the kind's configured result attributes and
table headers.`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadKind, "kind", "k", string(domain.SearchKindGenes), "search kind (genes, traits)")
	downloadCmd.Flags().StringArrayVarP(&downloadFields, "field", "f", nil, "form field as name=value (repeatable)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	kind, err := parseKind(downloadKind)
	if err != nil {
		return err
	}
	fields, err := parseFields(downloadFields)
	if err != nil {
		return err
	}

	switch kind {
	case domain.SearchKindTraits:
		return downloadWith(cmd, s.Traits, fields)
	default:
		return downloadWith(cmd, s.Genes, fields)
	}
}

func downloadWith[T any](cmd *cobra.Command, ctrl driving.PaginatedSearchController[T], fields domain.FormFields) error {
	if ctrl == nil {
		return fmt.Errorf("search not configured")
	}
	if err := ctrl.Download(cmd.Context(), fields); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	if snap := ctrl.Snapshot(); snap.State == domain.StateError {
		return fmt.Errorf("download failed: %s", snap.ErrorMessage)
	}
	result := ctrl.LastDownload()
	if result.Path == "" {
		cmd.Println("Download finished.")
		return nil
	}
	cmd.Printf("Downloaded to %s\n", result.Path)
	return nil
}
