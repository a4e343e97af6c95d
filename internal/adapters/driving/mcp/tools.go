package mcp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legumeinfo/lis-search/internal/core/domain"
	"github.com/legumeinfo/lis-search/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tools.
type SearchInput struct {
	Fields map[string]string `json:"fields" jsonschema:"form fields by name, for example genus, species or name"`
	Page   int               `json:"page,omitempty" jsonschema:"page to fetch (default 1)"`
}

// SearchOutput is the output schema for the search tools.
type SearchOutput[T any] struct {
	State       string `json:"state"`
	Summary     string `json:"summary,omitempty"`
	Page        int    `json:"page"`
	HasNext     bool   `json:"has_next"`
	NumPages    *int   `json:"num_pages,omitempty"`
	Results     []T    `json:"results"`
	QueryString string `json:"query_string,omitempty"`
}

// DownloadInput is the input schema for the download tool.
type DownloadInput struct {
	Kind   string            `json:"kind" jsonschema:"search kind: genes or traits"`
	Fields map[string]string `json:"fields" jsonschema:"form fields by name"`
}

// DownloadOutput is the output schema for the download tool.
type DownloadOutput struct {
	Path string `json:"path"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	if s.ports.Genes != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_genes",
			Description: "Search LIS genes by genus, species, strain, identifier, name, description or family",
		}, searchHandler(s.ports.Genes, s.locks[domain.SearchKindGenes]))
	}
	if s.ports.Traits != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_traits",
			Description: "Search LIS traits by genus, species or name",
		}, searchHandler(s.ports.Traits, s.locks[domain.SearchKindTraits]))
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "download",
		Description: "Download every result of a search to a TSV file and return its path",
	}, s.handleDownload)
}

// formFields converts a field map to form fields in name order.
func formFields(m map[string]string) domain.FormFields {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make(domain.FormFields, len(names))
	for i, name := range names {
		fields[i] = domain.FormField{Name: name, Value: m[name]}
	}
	return fields
}

func searchHandler[T any](
	ctrl driving.PaginatedSearchController[T],
	mu *sync.Mutex,
) func(context.Context, *mcp.CallToolRequest, SearchInput) (*mcp.CallToolResult, SearchOutput[T], error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput[T], error) {
		mu.Lock()
		defer mu.Unlock()

		if err := ctrl.Submit(ctx, formFields(input.Fields)); err != nil {
			return nil, SearchOutput[T]{}, err
		}
		if input.Page > 1 && ctrl.Snapshot().State == domain.StateSuccess {
			if err := ctrl.ChangePage(ctx, input.Page); err != nil {
				return nil, SearchOutput[T]{}, err
			}
		}
		return snapshotOutput(ctrl.Snapshot())
	}
}

func snapshotOutput[T any](snap domain.Snapshot[T]) (*mcp.CallToolResult, SearchOutput[T], error) {
	switch snap.State {
	case domain.StateError:
		return nil, SearchOutput[T]{}, fmt.Errorf("search failed: %s", snap.ErrorMessage)
	case domain.StateLoading:
		return nil, SearchOutput[T]{}, ErrSuperseded
	}

	output := SearchOutput[T]{
		State:       snap.State.String(),
		Summary:     snap.Summary,
		Results:     snap.Results,
		QueryString: snap.Request.Encode(),
	}
	if output.Results == nil {
		output.Results = []T{}
	}
	if snap.Page != nil {
		output.Page = snap.Page.Page
		output.HasNext = snap.Page.HasNext
		output.NumPages = snap.Page.NumPages
	}
	return nil, output, nil
}

// handleDownload handles the download tool invocation.
func (s *Server) handleDownload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DownloadInput,
) (*mcp.CallToolResult, DownloadOutput, error) {
	kind := domain.SearchKind(input.Kind)
	mu, ok := s.locks[kind]
	if !ok {
		return nil, DownloadOutput{}, fmt.Errorf("%w: search kind %q", domain.ErrUnsupportedType, input.Kind)
	}
	mu.Lock()
	defer mu.Unlock()

	fields := formFields(input.Fields)
	switch kind {
	case domain.SearchKindTraits:
		return download(ctx, s.ports.Traits, fields)
	default:
		return download(ctx, s.ports.Genes, fields)
	}
}

func download[T any](
	ctx context.Context,
	ctrl driving.PaginatedSearchController[T],
	fields domain.FormFields,
) (*mcp.CallToolResult, DownloadOutput, error) {
	if ctrl == nil {
		return nil, DownloadOutput{}, fmt.Errorf("search not configured")
	}
	if err := ctrl.Download(ctx, fields); err != nil {
		return nil, DownloadOutput{}, err
	}
	if snap := ctrl.Snapshot(); snap.State == domain.StateError {
		return nil, DownloadOutput{}, fmt.Errorf("download failed: %s", snap.ErrorMessage)
	} else if snap.State == domain.StateLoading {
		return nil, DownloadOutput{}, ErrSuperseded
	}
	return nil, DownloadOutput{Path: ctrl.LastDownload().Path}, nil
}
