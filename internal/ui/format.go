// ABOUTME: Terminal UI formatting for vcardz output.
// ABOUTME: Uses glamour for NOTE markdown and fatih/color for styling.

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/harper/vcardz/internal/models"
)

var (
	faint = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

type PropertyCount struct {
	Name  string
	Count int
}

func displayName(card *models.Card) string {
	if name := card.DisplayName(); name != "" {
		return name
	}
	return "(unnamed)"
}

func FormatCardListItem(card *models.Card) string {
	var sb strings.Builder

	idPrefix := card.ID.String()[:6]
	sb.WriteString(fmt.Sprintf("  %s  %s\n", faint(idPrefix), bold(displayName(card))))

	if p, ok := card.First("TEL"); ok {
		if phone, ok := p.(*models.Phone); ok {
			sb.WriteString(fmt.Sprintf("         %s %s\n", faint("Tel:"), phone.Number()))
		}
	}
	if p, ok := card.First("EMAIL"); ok {
		sb.WriteString(fmt.Sprintf("         %s %s\n", faint("Email:"), models.Unescape(p.Value())))
	}
	if p, ok := card.First(models.VCardCategories); ok {
		if cats, ok := p.(*models.Categories); ok && len(cats.Items()) > 0 {
			sb.WriteString(fmt.Sprintf("         %s %s\n",
				faint("Categories:"),
				cyan(strings.Join(cats.Items(), ", "))))
		}
	}

	return sb.String()
}

func FormatCardHeader(card *models.Card) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", bold(displayName(card))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(card.ID.String())))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(card.CreatedAt.Format("2006-01-02 15:04"))))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), faint(card.UpdatedAt.Format("2006-01-02 15:04"))))

	sb.WriteString(Separator())
	return sb.String()
}

// FormatProperties lists every slot with its members. NOTE values are left
// to FormatNoteContent.
func FormatProperties(card *models.Card) string {
	var sb strings.Builder
	for _, name := range card.Keys() {
		if name == "NOTE" {
			continue
		}
		members, _ := card.Get(name)
		for _, m := range members {
			switch v := m.(type) {
			case *models.Card:
				sb.WriteString(fmt.Sprintf("%s %s %s\n",
					cyan(fmt.Sprintf("%-12s", name)),
					bold(displayName(v)),
					faint(v.ID.String()[:6])))
			case models.Property:
				sb.WriteString(fmt.Sprintf("%s %s%s\n",
					cyan(fmt.Sprintf("%-12s", name)),
					propertyText(v),
					formatAttributes(v.Tag())))
			}
		}
	}
	return sb.String()
}

func propertyText(p models.Property) string {
	switch v := p.(type) {
	case *models.Phone:
		return v.Number()
	case *models.Name:
		return v.Formatted()
	case *models.Categories:
		return strings.Join(v.Items(), ", ")
	case *models.Address:
		var parts []string
		for _, f := range v.Fields() {
			if f != "" {
				parts = append(parts, f)
			}
		}
		return strings.Join(parts, ", ")
	case *models.Bag:
		return strings.Join(v.Fields(), " / ")
	default:
		return models.Unescape(p.Value())
	}
}

func formatAttributes(tag *models.Tag) string {
	keys := tag.AttrKeys()
	if len(keys) == 0 && tag.Group() == "" {
		return ""
	}
	var parts []string
	if tag.Group() != "" {
		parts = append(parts, "group="+tag.Group())
	}
	for _, k := range keys {
		parts = append(parts, strings.ToLower(k)+"="+strings.Join(tag.Attr(k), ","))
	}
	return " " + faint("("+strings.Join(parts, "; ")+")")
}

// FormatTag describes a parsed tag, including its content hash.
func FormatTag(tag *models.Tag) string {
	if tag.IsEmpty() {
		return Error("could not parse tag") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Property:"), bold(tag.Prop())))
	if tag.Group() != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Group:"), tag.Group()))
	}
	for _, k := range tag.AttrKeys() {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint(k+":"), cyan(strings.Join(tag.Attr(k), ", "))))
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Canonical:"), tag.String()))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Hash:"), faint(fmt.Sprintf("%08x", tag.Hash()))))
	return sb.String()
}

func FormatNoteContent(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to raw content if renderer fails
		return content, nil //nolint:nilerr // Intentional fallback
	}

	out, err := renderer.Render(content)
	if err != nil {
		// Fallback to raw content if rendering fails
		return content, nil //nolint:nilerr // Intentional fallback
	}
	return out, nil
}

func FormatPropertyCounts(counts []PropertyCount) string {
	var sb strings.Builder

	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("  %s %s\n",
			cyan(c.Name),
			faint(fmt.Sprintf("(%d)", c.Count))))
	}

	return sb.String()
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

func Warning(msg string) string {
	return color.New(color.FgYellow).Sprint("! ") + msg
}
