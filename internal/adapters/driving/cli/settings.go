package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the GraphQL endpoint, the API token and the
required field groups of each search kind.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEndpointCmd = &cobra.Command{
	Use:   "endpoint [url]",
	Short: "Set the GraphQL endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsEndpoint,
}

var settingsTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Set the API bearer token",
	Long:  `Reads a bearer token from standard input. An empty token removes it.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsToken,
}

var settingsRequiredCmd = &cobra.Command{
	Use:   "required [kind] [group...]",
	Short: "Set the field groups that trigger an automatic search",
	Long: `Sets the required field groups of a search kind. Each group is a
comma-separated list of field names; a query string triggers a search
when every field of at least one group is present.

Example:
  lis-search settings required genes genus,species identifier`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSettingsRequired,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEndpointCmd)
	settingsCmd.AddCommand(settingsTokenCmd)
	settingsCmd.AddCommand(settingsRequiredCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}

	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[API]")
	cmd.Printf("  Endpoint: %s\n", settings.API.Endpoint)
	if settings.API.Token != "" {
		cmd.Printf("  Token: %s\n", maskToken(settings.API.Token))
	} else {
		cmd.Printf("  Token: (not set)\n")
	}
	cmd.Printf("  Rate: %g requests/s\n", settings.API.Rate)
	cmd.Printf("  Max retries: %d\n", settings.API.MaxRetries)
	cmd.Printf("  Timeout: %s\n", settings.API.Timeout)
	cmd.Println()

	for _, kind := range domain.SearchKinds() {
		ss := settings.Search(kind)
		cmd.Printf("[Search: %s]\n", kind)
		cmd.Printf("  Required: %s\n", formatGroups(ss.Required))
		cmd.Printf("  Columns: %s\n", strings.Join(ss.Table.Headers(), ", "))
		cmd.Printf("  Page size: %d\n", ss.PageSize)
		cmd.Println()
	}

	cmd.Println("[History]")
	cmd.Printf("  Persist: %s\n", yesNo(settings.History.Persist))
	cmd.Printf("  Watch location: %s\n", yesNo(settings.History.WatchLocation))
	cmd.Println()

	if err := s.Settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsEndpoint(cmd *cobra.Command, args []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	if err := s.Settings.SetEndpoint(args[0]); err != nil {
		return fmt.Errorf("failed to set endpoint: %w", err)
	}
	cmd.Printf("Endpoint set to %s\n", args[0])
	return nil
}

func runSettingsToken(cmd *cobra.Command, _ []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Print("Token: ")
	token := readPassword(cmd.InOrStdin())
	cmd.Println()

	settings.API.Token = token
	if err := s.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if token == "" {
		cmd.Println("Token removed.")
	} else {
		cmd.Printf("Token set: %s\n", maskToken(token))
	}
	return nil
}

func runSettingsRequired(cmd *cobra.Command, args []string) error {
	s, err := requireServices()
	if err != nil {
		return err
	}
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	groups, err := parseGroups(args[1:])
	if err != nil {
		return err
	}
	if err := s.Settings.SetRequiredGroups(kind, groups); err != nil {
		return fmt.Errorf("failed to set required groups: %w", err)
	}
	cmd.Printf("Required groups for %s: %s\n", kind, formatGroups(groups))
	return nil
}

// parseGroups converts "a,b" arguments to required field groups.
func parseGroups(args []string) (domain.RequiredGroups, error) {
	groups := make(domain.RequiredGroups, 0, len(args))
	for _, arg := range args {
		var group []string
		for _, field := range strings.Split(arg, ",") {
			if field = strings.TrimSpace(field); field != "" {
				group = append(group, field)
			}
		}
		if len(group) == 0 {
			return nil, fmt.Errorf("%w: empty field group %q", domain.ErrInvalidInput, arg)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func formatGroups(groups domain.RequiredGroups) string {
	if len(groups) == 0 {
		return "(none)"
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		sorted := append([]string(nil), g...)
		sort.Strings(sorted)
		parts[i] = strings.Join(sorted, "+")
	}
	return strings.Join(parts, " | ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
