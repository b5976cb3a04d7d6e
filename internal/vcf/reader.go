// ABOUTME: Reads vCard text into Cards, one logical line per physical line.
// ABOUTME: Lines are routed through Card.Set; nested cards become AGENT members.

package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harper/vcardz/internal/models"
)

const (
	beginLine = "BEGIN:VCARD"
	endLine   = "END:VCARD"

	// EmbeddedProp is the slot that receives a nested BEGIN:VCARD block.
	EmbeddedProp = "AGENT"
)

var (
	ErrMalformedLine    = errors.New("malformed content line")
	ErrUnexpectedLine   = errors.New("content line outside of a card")
	ErrUnterminatedCard = errors.New("card is missing END:VCARD")
)

// LineError describes a line the reader skipped.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }

// Reader decodes cards from a stream. Lines are expected to be already
// unfolded.
type Reader struct {
	sc     *bufio.Scanner
	lineNo int

	// OnSkip, when set, is told about every line that was skipped.
	OnSkip func(*LineError)
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{sc: sc}
}

func (r *Reader) next() (string, bool) {
	for r.sc.Scan() {
		r.lineNo++
		line := strings.TrimRight(r.sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, true
	}
	return "", false
}

func (r *Reader) skip(text string, err error) {
	if r.OnSkip != nil {
		r.OnSkip(&LineError{Line: r.lineNo, Text: text, Err: err})
	}
}

// Read returns the next card, or io.EOF when the stream is exhausted.
func (r *Reader) Read() (*models.Card, error) {
	for {
		line, ok := r.next()
		if !ok {
			if err := r.sc.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		if strings.EqualFold(line, beginLine) {
			return r.readCard()
		}
		r.skip(line, ErrUnexpectedLine)
	}
}

// ReadAll reads cards until the end of the stream.
func (r *Reader) ReadAll() ([]*models.Card, error) {
	var cards []*models.Card
	for {
		card, err := r.Read()
		if errors.Is(err, io.EOF) {
			return cards, nil
		}
		if err != nil {
			return cards, err
		}
		cards = append(cards, card)
	}
}

func (r *Reader) readCard() (*models.Card, error) {
	card := models.NewCard()
	for {
		line, ok := r.next()
		if !ok {
			if err := r.sc.Err(); err != nil {
				return nil, err
			}
			return nil, ErrUnterminatedCard
		}

		switch {
		case strings.EqualFold(line, endLine):
			return card, nil
		case strings.EqualFold(line, beginLine):
			nested, err := r.readCard()
			if err != nil {
				return nil, err
			}
			card.Set(EmbeddedProp, models.Embedded(nested))
		default:
			if err := SetLine(card, line); err != nil {
				r.skip(line, err)
			}
		}
	}
}

// SetLine routes one content line into card under the line's own property
// name.
func SetLine(card *models.Card, line string) error {
	tag := models.NewTag(line)
	if tag.IsEmpty() {
		return ErrMalformedLine
	}
	card.Set(tag.Prop(), models.Raw(line))
	return nil
}
