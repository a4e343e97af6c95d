package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/legumeinfo/lis-search/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for lis-search resources.
	uriScheme = "lis://"

	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recent search query strings of every kind",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{kind}",
		Name:        "kind-history",
		Description: "Recent search query strings of one search kind",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

type historyInfo struct {
	Kind      string    `json:"kind"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// handleHistoryResource lists recorded query strings, newest first.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	kind, ok := extractKind(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	infos := []historyInfo{}
	if s.ports.History != nil {
		entries, err := s.ports.History.List(ctx, kind, historyLimit)
		if err != nil {
			return nil, fmt.Errorf("listing history: %w", err)
		}
		for _, e := range entries {
			infos = append(infos, historyInfo{Kind: e.Kind.String(), Query: e.Query, CreatedAt: e.CreatedAt})
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractKind extracts the kind from lis://history or lis://history/{kind}.
// The bare URI yields the empty kind.
func extractKind(uri string) (domain.SearchKind, bool) {
	const base = uriScheme + "history"

	if uri == base {
		return "", true
	}
	rest, ok := strings.CutPrefix(uri, base+"/")
	if !ok {
		return "", false
	}
	kind := domain.SearchKind(rest)
	return kind, kind.IsValid()
}
