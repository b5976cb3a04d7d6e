// ABOUTME: Writes Cards back out as vCard text.
// ABOUTME: Slots are written in creation order; nested cards are written inline.

package vcf

import (
	"bufio"
	"io"
	"strings"

	"github.com/harper/vcardz/internal/models"
)

// Writer encodes cards with CRLF line endings.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write encodes one card and flushes it.
func (w *Writer) Write(card *models.Card) error {
	if err := w.writeCard(card); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) writeCard(card *models.Card) error {
	if err := w.line(beginLine); err != nil {
		return err
	}
	for _, name := range card.Keys() {
		members, _ := card.Get(name)
		for _, m := range members {
			var err error
			switch v := m.(type) {
			case *models.Card:
				err = w.writeCard(v)
			case models.Property:
				err = w.line(v.String())
			}
			if err != nil {
				return err
			}
		}
	}
	return w.line(endLine)
}

func (w *Writer) line(s string) error {
	if _, err := w.w.WriteString(s); err != nil {
		return err
	}
	_, err := w.w.WriteString("\r\n")
	return err
}

// Marshal encodes cards to a string.
func Marshal(cards ...*models.Card) (string, error) {
	var sb strings.Builder
	w := NewWriter(&sb)
	for _, c := range cards {
		if err := w.Write(c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}
