// ABOUTME: MCP resources exposing cards as readable vCard text.
// ABOUTME: Allows AI agents to fetch a card via the vcardz://card/{id} URI scheme.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/vcf"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const cardURIPrefix = "vcardz://card/"

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: cardURIPrefix + "{id}",
			Name:        "Card",
			Description: "Access individual contact cards by ID or ID prefix",
			MIMEType:    "text/vcard",
		},
		s.handleReadResource,
	)
}

func (s *Server) handleReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ref, ok := strings.CutPrefix(req.Params.URI, cardURIPrefix)
	if !ok || ref == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	card, err := db.GetCard(s.db, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	text, err := vcf.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("failed to render card: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "text/vcard",
				Text:     text,
			},
		},
	}, nil
}
