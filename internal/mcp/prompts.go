// ABOUTME: MCP prompts for common contact-management workflows.
// ABOUTME: Provides pre-configured prompts for AI agent interactions.

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "summarize-contact",
		Description: "Summarize who a contact is and how to reach them",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "card_id",
				Description: "ID of the card to summarize",
				Required:    true,
			},
		},
	}, s.getSummarizeContactPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "find-duplicates",
		Description: "Look for cards that describe the same person and suggest merges",
	}, s.getFindDuplicatesPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "create-contact",
		Description: "Create a contact card from a free-form description",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "description",
				Description: "Free-form text about the person (name, email, phone, address)",
				Required:    true,
			},
		},
	}, s.getCreateContactPrompt)
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}

func (s *Server) getSummarizeContactPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	cardID, ok := req.Params.Arguments["card_id"]
	if !ok || cardID == "" {
		return nil, fmt.Errorf("card_id argument is required")
	}

	return userPrompt(fmt.Sprintf(`Please summarize the contact with ID: %s

1. Use the get_card tool to retrieve the card
2. Identify the person's name (FN, or N when FN is missing)
3. List every way to reach them: TEL, EMAIL, ADR and URL, with their TYPE attributes
4. Mention the organization, title and categories if present
5. Point out anything that looks incomplete, such as an ADR with no locality`, cardID)), nil
}

func (s *Server) getFindDuplicatesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt(`Help me find duplicate contacts:

1. Use the list_cards tool to see all cards
2. Use get_card on cards with similar display names
3. Use find_by_tag with lines like EMAIL;TYPE=work:x to spot cards sharing the same kind of property
4. Group cards that appear to describe the same person
5. For each group, propose which lines to keep and which card to delete

Please reference cards by ID and do not delete anything without confirmation.`), nil
}

func (s *Server) getCreateContactPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	description, ok := req.Params.Arguments["description"]
	if !ok || description == "" {
		return nil, fmt.Errorf("description argument is required")
	}

	return userPrompt(fmt.Sprintf(`Create a contact card from this description:

%s

Convert it into vCard content lines, for example:
- FN:Jane Doe
- N:Doe;Jane;;;
- EMAIL;TYPE=work:jane@example.com
- TEL;TYPE=cell:+1-555-0100
- ADR;TYPE=home:;;123 Main St;Springfield;IL;62701;USA

Escape literal ';', ',' and ':' in values with a backslash, then call the
create_card tool with the lines.`, description)), nil
}
