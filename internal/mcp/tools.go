// ABOUTME: MCP tools for tag parsing and card CRUD operations.
// ABOUTME: Maps CLI functionality to MCP tool interface.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/harper/vcardz/internal/vcf"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

func (s *Server) registerTools() {
	// parse_tag
	s.server.AddTool(&mcp.Tool{
		Name:        "parse_tag",
		Description: "Parse the specifier of a vCard content line into group, property name and attributes",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"line": {"type": "string", "description": "Content line, e.g. item1.TEL;TYPE=work:+1-555"}
			},
			"required": ["line"]
		}`),
	}, s.handleParseTag)

	// create_card
	s.server.AddTool(&mcp.Tool{
		Name:        "create_card",
		Description: "Create a new contact card from vCard content lines",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"lines": {"type": "array", "items": {"type": "string"}, "description": "Content lines such as FN:Jane Doe"}
			},
			"required": ["lines"]
		}`),
	}, s.handleCreateCard)

	// get_card
	s.server.AddTool(&mcp.Tool{
		Name:        "get_card",
		Description: "Get a card by ID prefix",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Card ID or prefix (6+ chars)"}
			},
			"required": ["id"]
		}`),
	}, s.handleGetCard)

	// list_cards
	s.server.AddTool(&mcp.Tool{
		Name:        "list_cards",
		Description: "List cards with optional property filtering",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prop": {"type": "string", "description": "Only cards carrying this property name"},
				"limit": {"type": "integer", "description": "Max results", "default": 20}
			}
		}`),
	}, s.handleListCards)

	// search_cards
	s.server.AddTool(&mcp.Tool{
		Name:        "search_cards",
		Description: "Full-text search cards",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query"},
				"limit": {"type": "integer", "description": "Max results", "default": 10}
			},
			"required": ["query"]
		}`),
	}, s.handleSearchCards)

	// set_property
	s.server.AddTool(&mcp.Tool{
		Name:        "set_property",
		Description: "Add a content line to a card property",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Card ID or prefix"},
				"name": {"type": "string", "description": "Property name; defaults to the line's own name"},
				"line": {"type": "string", "description": "Content line or bare value"}
			},
			"required": ["id", "line"]
		}`),
	}, s.handleSetProperty)

	// get_property
	s.server.AddTool(&mcp.Tool{
		Name:        "get_property",
		Description: "Get every value stored under a card property",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Card ID or prefix"},
				"name": {"type": "string", "description": "Property name"}
			},
			"required": ["id", "name"]
		}`),
	}, s.handleGetProperty)

	// delete_property
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_property",
		Description: "Remove a property and all its values from a card",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Card ID or prefix"},
				"name": {"type": "string", "description": "Property name"}
			},
			"required": ["id", "name"]
		}`),
	}, s.handleDeleteProperty)

	// delete_card
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_card",
		Description: "Delete a card",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Card ID or prefix"}
			},
			"required": ["id"]
		}`),
	}, s.handleDeleteCard)

	// find_by_tag
	s.server.AddTool(&mcp.Tool{
		Name:        "find_by_tag",
		Description: "Find stored lines whose group, name and attributes match a given line",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"line": {"type": "string", "description": "Content line whose specifier to match"}
			},
			"required": ["line"]
		}`),
	}, s.handleFindByTag)

	// export_card
	s.server.AddTool(&mcp.Tool{
		Name:        "export_card",
		Description: "Export a card as vCard, JSON or YAML",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Card ID or prefix"},
				"format": {"type": "string", "description": "Format: vcf, json or yaml", "default": "vcf"}
			},
			"required": ["id"]
		}`),
	}, s.handleExportCard)
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to encode result: %v", err)
	}
	return textResult(string(data))
}

type cardSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	UpdatedAt   int64  `json:"updated_at"`
}

func summarize(card *models.Card) cardSummary {
	return cardSummary{
		ID:          card.ID.String(),
		DisplayName: card.DisplayName(),
		UpdatedAt:   card.UpdatedAt.Unix(),
	}
}

type tagResult struct {
	Tag       models.TagData `json:"tag"`
	Canonical string         `json:"canonical"`
	Hash      uint32         `json:"hash"`
	Empty     bool           `json:"empty"`
}

// Tool handlers.
func (s *Server) handleParseTag(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Line string `json:"line"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	tag := models.NewTag(params.Line)
	return jsonResult(tagResult{
		Tag:       tag.ToObject(),
		Canonical: tag.String(),
		Hash:      tag.Hash(),
		Empty:     tag.IsEmpty(),
	}), nil
}

func (s *Server) handleCreateCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	card := models.NewCard()
	var skipped []string
	for _, line := range params.Lines {
		if err := vcf.SetLine(card, line); err != nil {
			skipped = append(skipped, line)
		}
	}
	if len(card.Keys()) == 0 {
		return errorResult("card needs at least one valid content line"), nil
	}

	if err := db.CreateCard(s.db, card); err != nil {
		return errorResult("failed to create card: %v", err), nil
	}

	msg := fmt.Sprintf("Created card %s", card.ID.String())
	if len(skipped) > 0 {
		msg += fmt.Sprintf(" (skipped %d malformed lines: %s)", len(skipped), strings.Join(skipped, " | "))
	}
	return textResult(msg), nil
}

func (s *Server) handleGetCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	card, err := db.GetCard(s.db, params.ID)
	if err != nil {
		return errorResult("failed to get card: %v", err), nil
	}
	return jsonResult(models.ToData(card)), nil
}

func (s *Server) handleListCards(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Prop  *string `json:"prop"`
		Limit int     `json:"limit"`
	}
	params.Limit = 20 // default
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	cards, err := db.ListCards(s.db, params.Prop, params.Limit)
	if err != nil {
		return errorResult("failed to list cards: %v", err), nil
	}

	summaries := make([]cardSummary, 0, len(cards))
	for _, card := range cards {
		summaries = append(summaries, summarize(card))
	}
	return jsonResult(summaries), nil
}

func (s *Server) handleSearchCards(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	params.Limit = 10 // default
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	results, err := db.SearchCards(s.db, params.Query, params.Limit)
	if err != nil {
		return errorResult("search failed: %v", err), nil
	}

	type searchHit struct {
		cardSummary
		Rank float64 `json:"rank"`
	}
	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, searchHit{cardSummary: summarize(r.Card), Rank: r.Rank})
	}
	return jsonResult(hits), nil
}

func (s *Server) handleSetProperty(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Line string `json:"line"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	name := strings.ToUpper(strings.TrimSpace(params.Name))
	if name == "" {
		name = models.NewTag(params.Line).Prop()
	}
	if name == "" {
		return errorResult("property name required when the line has none"), nil
	}

	card, err := db.GetCard(s.db, params.ID)
	if err != nil {
		return errorResult("failed to find card: %v", err), nil
	}

	card.Set(name, models.Raw(params.Line))
	if err := db.UpdateCard(s.db, card); err != nil {
		return errorResult("failed to update card: %v", err), nil
	}
	return textResult(fmt.Sprintf("Set %s on card %s", name, card.ID.String())), nil
}

type propertyValue struct {
	Line  string          `json:"line,omitempty"`
	Tag   *models.TagData `json:"tag,omitempty"`
	Value string          `json:"value,omitempty"`
	Card  *string         `json:"card,omitempty"`
}

func (s *Server) handleGetProperty(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	card, err := db.GetCard(s.db, params.ID)
	if err != nil {
		return errorResult("failed to find card: %v", err), nil
	}

	name := strings.ToUpper(params.Name)
	members, ok := card.Get(name)
	if !ok {
		return errorResult("card %s has no property %s", card.ID.String(), name), nil
	}

	values := make([]propertyValue, 0, len(members))
	for _, m := range members {
		switch v := m.(type) {
		case models.Property:
			tag := v.Tag().ToObject()
			values = append(values, propertyValue{Line: v.String(), Tag: &tag, Value: v.Value()})
		case *models.Card:
			id := v.ID.String()
			values = append(values, propertyValue{Card: &id})
		}
	}
	return jsonResult(values), nil
}

func (s *Server) handleDeleteProperty(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	card, err := db.GetCard(s.db, params.ID)
	if err != nil {
		return errorResult("failed to find card: %v", err), nil
	}

	name := strings.ToUpper(params.Name)
	if !card.Has(name) {
		return errorResult("card %s has no property %s", card.ID.String(), name), nil
	}
	card.Delete(name)
	if err := db.UpdateCard(s.db, card); err != nil {
		return errorResult("failed to update card: %v", err), nil
	}
	return textResult(fmt.Sprintf("Removed %s from card %s", name, card.ID.String())), nil
}

func (s *Server) handleDeleteCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	card, err := db.GetCard(s.db, params.ID)
	if err != nil {
		return errorResult("failed to find card: %v", err), nil
	}
	if err := db.DeleteCard(s.db, card.ID); err != nil {
		return errorResult("failed to delete card: %v", err), nil
	}
	return textResult(fmt.Sprintf("Deleted card %s", card.ID.String())), nil
}

func (s *Server) handleFindByTag(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Line string `json:"line"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	tag := models.NewTag(params.Line)
	if tag.IsEmpty() {
		return errorResult("could not parse a property name from %q", params.Line), nil
	}

	matches, err := db.FindByTagHash(s.db, tag.Sum())
	if err != nil {
		return errorResult("lookup failed: %v", err), nil
	}

	type match struct {
		CardID string `json:"card_id"`
		Name   string `json:"name"`
		Line   string `json:"line"`
	}
	out := make([]match, 0, len(matches))
	for _, m := range matches {
		out = append(out, match{CardID: m.CardID.String(), Name: m.Name, Line: m.Line})
	}
	return jsonResult(out), nil
}

func (s *Server) handleExportCard(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID     string `json:"id"`
		Format string `json:"format"`
	}
	params.Format = "vcf"
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	card, err := db.GetCard(s.db, params.ID)
	if err != nil {
		return errorResult("failed to find card: %v", err), nil
	}

	switch params.Format {
	case "vcf":
		text, err := vcf.Marshal(card)
		if err != nil {
			return errorResult("failed to export card: %v", err), nil
		}
		return textResult(text), nil
	case "json":
		return jsonResult(models.ToData(card)), nil
	case "yaml":
		data, err := yaml.Marshal(models.ToData(card))
		if err != nil {
			return errorResult("failed to export card: %v", err), nil
		}
		return textResult(string(data)), nil
	default:
		return errorResult("unknown format %q (want vcf, json or yaml)", params.Format), nil
	}
}
