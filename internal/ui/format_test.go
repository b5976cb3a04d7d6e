// ABOUTME: Tests for terminal UI formatting functions.
// ABOUTME: Validates card display, tag description, and markdown rendering.

package ui

import (
	"strings"
	"testing"

	"github.com/harper/vcardz/internal/models"
)

func testCard() *models.Card {
	card := models.NewCard()
	card.Set("FN", models.Raw("FN:Jane Doe"))
	card.Set("TEL", models.Raw("item1.TEL;TYPE=cell:555-0100"))
	card.Set("EMAIL", models.Raw("EMAIL:jane@example.com"))
	card.Set(models.VCardCategories, models.Raw("CATEGORIES:friends,work"))
	card.Set("ADR", models.Raw("ADR:;;1 Main St;Springfield;;;"))
	return card
}

func TestFormatCardListItem(t *testing.T) {
	card := testCard()

	output := FormatCardListItem(card)

	if !strings.Contains(output, card.ID.String()[:6]) {
		t.Error("expected output to contain ID prefix")
	}
	for _, want := range []string{"Jane Doe", "555-0100", "jane@example.com", "friends, work"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestFormatCardListItemUnnamed(t *testing.T) {
	output := FormatCardListItem(models.NewCard())
	if !strings.Contains(output, "(unnamed)") {
		t.Error("expected placeholder for a card without a name")
	}
}

func TestFormatProperties(t *testing.T) {
	card := testCard()
	agent := models.NewCard()
	agent.Set("FN", models.Raw("FN:Assistant"))
	card.Set("AGENT", models.Embedded(agent))
	card.Set("NOTE", models.Raw("NOTE:hidden here"))

	output := FormatProperties(card)

	for _, want := range []string{"1 Main St, Springfield", "group=item1", "type=cell", "Assistant"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(output, "hidden here") {
		t.Error("expected NOTE to be left out")
	}
}

func TestFormatTag(t *testing.T) {
	output := FormatTag(models.NewTag("item1.TEL;TYPE=home,voice:555"))

	for _, want := range []string{"TEL", "item1", "home, voice", "item1.TEL;TYPE=home,voice"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}

	if !strings.Contains(FormatTag(models.NewTag("TEL;HOME:1")), "could not parse") {
		t.Error("expected parse failure message")
	}
}

func TestFormatNoteContent(t *testing.T) {
	content := "# Hello\n\nThis is **bold** text."

	output, err := FormatNoteContent(content)
	if err != nil {
		t.Fatalf("failed to format content: %v", err)
	}

	if output == "" {
		t.Error("expected non-empty output")
	}
}

func TestFormatPropertyCounts(t *testing.T) {
	counts := []PropertyCount{
		{Name: "TEL", Count: 5},
		{Name: "EMAIL", Count: 3},
	}

	output := FormatPropertyCounts(counts)

	if !strings.Contains(output, "TEL") {
		t.Error("expected output to contain 'TEL'")
	}
	if !strings.Contains(output, "5") {
		t.Error("expected output to contain count '5'")
	}
}
