// ABOUTME: Tests for MCP tool, resource and prompt handlers.
// ABOUTME: Calls handlers directly against a temporary database.

package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/vcardz/internal/db"
	"github.com/harper/vcardz/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewServer(conn)
}

func callTool(t *testing.T, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args string) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(args)},
	})
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected *TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func seedCard(t *testing.T, s *Server, lines ...string) *models.Card {
	t.Helper()
	card := models.NewCard()
	for _, line := range lines {
		card.Set(models.NewTag(line).Prop(), models.Raw(line))
	}
	if err := db.CreateCard(s.db, card); err != nil {
		t.Fatalf("failed to seed card: %v", err)
	}
	return card
}

func TestParseTagTool(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s.handleParseTag, `{"line": "item1.tel;type=work,voice:+1-555"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	var got tagResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if got.Canonical != "item1.TEL;TYPE=work,voice" {
		t.Errorf("unexpected canonical form %q", got.Canonical)
	}
	if got.Empty || got.Hash == 0 {
		t.Errorf("expected parsed tag with hash, got %+v", got)
	}
	if got.Tag.Prop == nil || *got.Tag.Prop != "TEL" {
		t.Errorf("expected prop TEL, got %v", got.Tag.Prop)
	}
}

func TestParseTagToolMalformed(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s.handleParseTag, `{"line": "TEL;TYPE:555"}`)
	var got tagResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if !got.Empty || got.Hash != 0 || got.Canonical != "" {
		t.Errorf("expected empty tag, got %+v", got)
	}
}

func TestCreateAndGetCardTools(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s.handleCreateCard, `{"lines": ["FN:Jane Doe", "TEL;TYPE=cell:555-0100", "garbage;x"]}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.HasPrefix(text, "Created card ") {
		t.Fatalf("unexpected result %q", text)
	}
	if !strings.Contains(text, "skipped 1") {
		t.Errorf("expected skipped line to be reported, got %q", text)
	}

	id := strings.Fields(strings.TrimPrefix(text, "Created card "))[0]
	result = callTool(t, s.handleGetCard, `{"id": "`+id[:8]+`"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	var data models.CardData
	if err := json.Unmarshal([]byte(resultText(t, result)), &data); err != nil {
		t.Fatalf("failed to decode card: %v", err)
	}
	if data.ID != id {
		t.Errorf("expected ID %s, got %s", id, data.ID)
	}
	if len(data.Properties) != 2 {
		t.Errorf("expected 2 properties, got %d", len(data.Properties))
	}
}

func TestCreateCardToolRejectsEmpty(t *testing.T) {
	s := newTestServer(t)

	result := callTool(t, s.handleCreateCard, `{"lines": ["nothing here;x"]}`)
	if !result.IsError {
		t.Error("expected error for card without valid lines")
	}
}

func TestSetAndGetPropertyTools(t *testing.T) {
	s := newTestServer(t)
	card := seedCard(t, s, "FN:Jane Doe")

	result := callTool(t, s.handleSetProperty, `{"id": "`+card.ID.String()+`", "line": "email;type=work:jane@example.com"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	result = callTool(t, s.handleSetProperty, `{"id": "`+card.ID.String()+`", "name": "adr", "line": "123 Main St"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	result = callTool(t, s.handleGetProperty, `{"id": "`+card.ID.String()+`", "name": "EMAIL"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	var values []propertyValue
	if err := json.Unmarshal([]byte(resultText(t, result)), &values); err != nil {
		t.Fatalf("failed to decode values: %v", err)
	}
	if len(values) != 1 || values[0].Line != "EMAIL;TYPE=work:jane@example.com" {
		t.Errorf("unexpected values %+v", values)
	}

	result = callTool(t, s.handleGetProperty, `{"id": "`+card.ID.String()+`", "name": "ADR"}`)
	values = nil
	if err := json.Unmarshal([]byte(resultText(t, result)), &values); err != nil {
		t.Fatalf("failed to decode values: %v", err)
	}
	if len(values) != 1 || values[0].Line != "ADR:123 Main St" {
		t.Errorf("expected bare value backfilled with ADR, got %+v", values)
	}
}

func TestSetPropertyToolBareURL(t *testing.T) {
	s := newTestServer(t)
	card := seedCard(t, s, "FN:Jane Doe")

	result := callTool(t, s.handleSetProperty, `{"id": "`+card.ID.String()+`", "name": "url", "line": "https://example.com/jane"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	got, err := db.GetCardByID(s.db, card.ID)
	if err != nil {
		t.Fatalf("failed to get card: %v", err)
	}
	p, ok := got.First("URL")
	if !ok {
		t.Fatal("expected a URL property")
	}
	if p.String() != "URL:https://example.com/jane" {
		t.Errorf("expected URL line, got %q", p.String())
	}
	if got.Has("HTTPS") {
		t.Error("did not expect an HTTPS property")
	}
}

func TestGetPropertyToolMissing(t *testing.T) {
	s := newTestServer(t)
	card := seedCard(t, s, "FN:Jane Doe")

	result := callTool(t, s.handleGetProperty, `{"id": "`+card.ID.String()+`", "name": "TEL"}`)
	if !result.IsError {
		t.Error("expected error for missing property")
	}
}

func TestDeletePropertyTool(t *testing.T) {
	s := newTestServer(t)
	card := seedCard(t, s, "FN:Jane Doe", "TEL:555-0100")

	result := callTool(t, s.handleDeleteProperty, `{"id": "`+card.ID.String()+`", "name": "tel"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}

	got, err := db.GetCardByID(s.db, card.ID)
	if err != nil {
		t.Fatalf("failed to reload card: %v", err)
	}
	if got.Has("TEL") {
		t.Error("expected TEL to be removed")
	}
	if !got.Has("FN") {
		t.Error("expected FN to survive")
	}
}

func TestListAndSearchCardsTools(t *testing.T) {
	s := newTestServer(t)
	seedCard(t, s, "FN:Jane Doe", "TEL:555-0100")
	seedCard(t, s, "FN:John Smith")

	result := callTool(t, s.handleListCards, `{"prop": "tel"}`)
	var summaries []cardSummary
	if err := json.Unmarshal([]byte(resultText(t, result)), &summaries); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(summaries) != 1 || summaries[0].DisplayName != "Jane Doe" {
		t.Errorf("unexpected list %+v", summaries)
	}

	result = callTool(t, s.handleSearchCards, `{"query": "smith"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if !strings.Contains(resultText(t, result), "John Smith") {
		t.Errorf("expected John Smith in results, got %s", resultText(t, result))
	}
}

func TestDeleteCardTool(t *testing.T) {
	s := newTestServer(t)
	card := seedCard(t, s, "FN:Jane Doe")

	result := callTool(t, s.handleDeleteCard, `{"id": "`+card.ID.String()+`"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	if _, err := db.GetCardByID(s.db, card.ID); err == nil {
		t.Error("expected card to be gone")
	}
	if ts, err := db.GetTombstone(s.db, card.ID); err != nil || ts == nil {
		t.Errorf("expected a tombstone so sync pull keeps it deleted, got %v, %v", ts, err)
	}

	result = callTool(t, s.handleDeleteCard, `{"id": "`+card.ID.String()+`"}`)
	if !result.IsError {
		t.Error("expected error deleting a missing card")
	}
}

func TestFindByTagTool(t *testing.T) {
	s := newTestServer(t)
	a := seedCard(t, s, "FN:Jane Doe", "EMAIL;TYPE=work:jane@example.com")
	seedCard(t, s, "FN:John Smith", "EMAIL;TYPE=home:john@example.com")

	result := callTool(t, s.handleFindByTag, `{"line": "email;type=work:someone@else.com"}`)
	if result.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, a.ID.String()) {
		t.Errorf("expected match on %s, got %s", a.ID, text)
	}
	if strings.Contains(text, "john@example.com") {
		t.Errorf("did not expect the home email to match, got %s", text)
	}
}

func TestExportCardTool(t *testing.T) {
	s := newTestServer(t)
	card := seedCard(t, s, "FN:Jane Doe")

	result := callTool(t, s.handleExportCard, `{"id": "`+card.ID.String()+`"}`)
	text := resultText(t, result)
	if !strings.Contains(text, "BEGIN:VCARD") || !strings.Contains(text, "FN:Jane Doe") {
		t.Errorf("unexpected vcf export %q", text)
	}

	result = callTool(t, s.handleExportCard, `{"id": "`+card.ID.String()+`", "format": "yaml"}`)
	if !strings.Contains(resultText(t, result), "name: FN") {
		t.Errorf("unexpected yaml export %q", resultText(t, result))
	}

	result = callTool(t, s.handleExportCard, `{"id": "`+card.ID.String()+`", "format": "xml"}`)
	if !result.IsError {
		t.Error("expected error for unknown format")
	}
}

func TestReadResource(t *testing.T) {
	s := newTestServer(t)
	card := seedCard(t, s, "FN:Jane Doe")

	uri := cardURIPrefix + card.ID.String()
	result, err := s.handleReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	})
	if err != nil {
		t.Fatalf("failed to read resource: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(result.Contents))
	}
	if result.Contents[0].MIMEType != "text/vcard" {
		t.Errorf("unexpected MIME type %q", result.Contents[0].MIMEType)
	}
	if !strings.Contains(result.Contents[0].Text, "FN:Jane Doe") {
		t.Errorf("unexpected resource text %q", result.Contents[0].Text)
	}

	_, err = s.handleReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "contacts://card/x"},
	})
	if err == nil {
		t.Error("expected error for foreign URI")
	}
}

func TestPrompts(t *testing.T) {
	s := newTestServer(t)

	result, err := s.getSummarizeContactPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{"card_id": "abc123"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := result.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(text, "abc123") {
		t.Errorf("expected card ID in prompt, got %q", text)
	}

	_, err = s.getSummarizeContactPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{}},
	})
	if err == nil {
		t.Error("expected error without card_id")
	}

	result, err = s.getFindDuplicatesPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Messages) != 1 {
		t.Errorf("expected 1 message, got %d", len(result.Messages))
	}
}
