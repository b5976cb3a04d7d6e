// ABOUTME: Tests for the Charm KV card encoding helpers
// ABOUTME: Store access itself needs a linked charm account and is not covered

package charm

import (
	"testing"

	"github.com/harper/vcardz/internal/models"
)

func TestCardKey(t *testing.T) {
	card := models.NewCard()
	key := string(cardKey(card.ID))
	if key != CardPrefix+card.ID.String() {
		t.Errorf("unexpected key %q", key)
	}
}

func TestEncodeDecodeCard(t *testing.T) {
	card := models.NewCard()
	card.Set("FN", models.Raw("FN:Jane Doe"))
	card.Set("TEL", models.Raw("TEL;TYPE=cell:555"))

	encoded, err := encodeCard(card)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeCard(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != card.ID {
		t.Errorf("expected ID %s, got %s", card.ID, got.ID)
	}
	if got.DisplayName() != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got %q", got.DisplayName())
	}
	if p, ok := got.First("TEL"); !ok || p.String() != "TEL;TYPE=cell:555" {
		t.Errorf("unexpected TEL %v", p)
	}
}

func TestDecodeCardRejectsGarbage(t *testing.T) {
	if _, err := decodeCard([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestMatchKeys(t *testing.T) {
	keys := [][]byte{
		[]byte("card:abc123"),
		[]byte("card:abd456"),
		[]byte("other:abc123"),
	}
	if got := matchKeys(keys, []byte("card:")); len(got) != 2 {
		t.Errorf("expected 2 card keys, got %d", len(got))
	}
	if got := matchKeys(keys, []byte("card:abc")); len(got) != 1 {
		t.Errorf("expected 1 prefix match, got %d", len(got))
	}
}
