// ABOUTME: Tests for card database operations.
// ABOUTME: Covers CRUD, prefix lookup, property filters, and hash lookup.

package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/vcardz/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestCard(fn string, lines ...string) *models.Card {
	card := models.NewCard()
	card.Set("FN", models.Raw("FN:"+fn))
	for _, line := range lines {
		tag := models.NewTag(line)
		card.Set(tag.Prop(), models.Raw(line))
	}
	return card
}

func TestCreateAndGetCard(t *testing.T) {
	db := openTestDB(t)

	card := newTestCard("Jane Doe", "TEL;TYPE=cell:555-0100", "ADR:;;1 Main St;Springfield;;;")
	if err := CreateCard(db, card); err != nil {
		t.Fatalf("failed to create card: %v", err)
	}

	got, err := GetCardByID(db, card.ID)
	if err != nil {
		t.Fatalf("failed to get card: %v", err)
	}
	if got.DisplayName() != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got %q", got.DisplayName())
	}
	if p, ok := got.First("TEL"); !ok {
		t.Error("expected TEL property")
	} else if _, ok := p.(*models.Phone); !ok {
		t.Errorf("expected *Phone, got %T", p)
	}
	if p, _ := got.First("ADR"); p.(*models.Address).Street() != "1 Main St" {
		t.Errorf("unexpected street %q", p.(*models.Address).Street())
	}
}

func TestGetCardByPrefix(t *testing.T) {
	db := openTestDB(t)

	card := newTestCard("Prefix Test")
	_ = CreateCard(db, card)

	got, err := GetCardByPrefix(db, card.ID.String()[:8])
	if err != nil {
		t.Fatalf("failed to get card by prefix: %v", err)
	}
	if got.ID != card.ID {
		t.Errorf("expected ID %s, got %s", card.ID, got.ID)
	}

	if _, err := GetCardByPrefix(db, "abc"); !errors.Is(err, ErrPrefixTooShort) {
		t.Errorf("expected ErrPrefixTooShort, got %v", err)
	}
	if _, err := GetCardByPrefix(db, "zzzzzz"); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}

	got, err = GetCard(db, card.ID.String())
	if err != nil || got.ID != card.ID {
		t.Errorf("expected GetCard to resolve a full ID, got %v", err)
	}
}

func TestGetCardByPrefixIgnoresWildcards(t *testing.T) {
	db := openTestDB(t)

	first := newTestCard("First")
	second := newTestCard("Second")
	_ = CreateCard(db, first)
	_ = CreateCard(db, second)

	for _, prefix := range []string{"______", "%%%%%%", "%_%_%_"} {
		if _, err := GetCardByPrefix(db, prefix); !errors.Is(err, ErrCardNotFound) {
			t.Errorf("GetCardByPrefix(%q): expected ErrCardNotFound, got %v", prefix, err)
		}
	}

	got, err := GetCardByPrefix(db, strings.ToUpper(first.ID.String()[:8]))
	if err != nil {
		t.Fatalf("expected an upper-case prefix to resolve, got %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("expected ID %s, got %s", first.ID, got.ID)
	}
}

func TestUpdateCard(t *testing.T) {
	db := openTestDB(t)

	card := newTestCard("Before")
	_ = CreateCard(db, card)

	card.Delete("FN")
	card.Set("FN", models.Raw("FN:After"))
	card.Set("EMAIL", models.Raw("EMAIL;TYPE=work:after@example.com"))
	if err := UpdateCard(db, card); err != nil {
		t.Fatalf("failed to update card: %v", err)
	}

	got, _ := GetCardByID(db, card.ID)
	if got.DisplayName() != "After" {
		t.Errorf("expected 'After', got %q", got.DisplayName())
	}
	if !got.Has("EMAIL") {
		t.Error("expected EMAIL after update")
	}

	missing := newTestCard("Missing")
	if err := UpdateCard(db, missing); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}

func TestUpsertCard(t *testing.T) {
	db := openTestDB(t)

	card := newTestCard("Remote")
	if err := UpsertCard(db, card); err != nil {
		t.Fatalf("failed to insert via upsert: %v", err)
	}
	card.Set("NOTE", models.Raw("NOTE:pulled twice"))
	if err := UpsertCard(db, card); err != nil {
		t.Fatalf("failed to update via upsert: %v", err)
	}

	got, err := GetCardByID(db, card.ID)
	if err != nil {
		t.Fatalf("failed to get card: %v", err)
	}
	if !got.Has("NOTE") {
		t.Error("expected NOTE after second upsert")
	}
	cards, _ := ListCards(db, nil, 10)
	if len(cards) != 1 {
		t.Errorf("expected 1 card, got %d", len(cards))
	}
}

func TestDeleteCard(t *testing.T) {
	db := openTestDB(t)

	card := newTestCard("Delete Me", "TEL:1")
	_ = CreateCard(db, card)

	if err := DeleteCard(db, card.ID); err != nil {
		t.Fatalf("failed to delete card: %v", err)
	}
	if _, err := GetCardByID(db, card.ID); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}

	var count int
	_ = db.QueryRow(`SELECT COUNT(*) FROM card_properties WHERE card_id = ?`, card.ID.String()).Scan(&count)
	if count != 0 {
		t.Errorf("expected properties to be removed, got %d rows", count)
	}

	if err := DeleteCard(db, card.ID); !errors.Is(err, ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound on second delete, got %v", err)
	}
}

func TestDeleteCardLeavesTombstone(t *testing.T) {
	db := openTestDB(t)

	card := newTestCard("Gone")
	_ = CreateCard(db, card)

	ts, err := GetTombstone(db, card.ID)
	if err != nil || ts != nil {
		t.Fatalf("expected no tombstone before delete, got %v, %v", ts, err)
	}

	before := time.Now().Add(-time.Second)
	if err := DeleteCard(db, card.ID); err != nil {
		t.Fatalf("failed to delete card: %v", err)
	}

	ts, err = GetTombstone(db, card.ID)
	if err != nil {
		t.Fatalf("failed to get tombstone: %v", err)
	}
	if ts == nil || ts.CardID != card.ID {
		t.Fatalf("expected tombstone for %s, got %+v", card.ID, ts)
	}
	if ts.DeletedAt.Before(before) {
		t.Errorf("expected deleted_at after %v, got %v", before, ts.DeletedAt)
	}

	all, err := ListTombstones(db)
	if err != nil {
		t.Fatalf("failed to list tombstones: %v", err)
	}
	if len(all) != 1 || all[0].CardID != card.ID {
		t.Errorf("expected one tombstone for %s, got %+v", card.ID, all)
	}

	// Storing the card again revives it.
	if err := UpsertCard(db, card); err != nil {
		t.Fatalf("failed to upsert card: %v", err)
	}
	if ts, _ := GetTombstone(db, card.ID); ts != nil {
		t.Errorf("expected upsert to clear the tombstone, got %+v", ts)
	}
}

func TestListCardsByProperty(t *testing.T) {
	db := openTestDB(t)

	_ = CreateCard(db, newTestCard("With Phone", "TEL:1"))
	_ = CreateCard(db, newTestCard("Without Phone", "EMAIL:x@example.com"))

	all, err := ListCards(db, nil, 10)
	if err != nil {
		t.Fatalf("failed to list cards: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 cards, got %d", len(all))
	}

	prop := "tel"
	withTel, err := ListCards(db, &prop, 10)
	if err != nil {
		t.Fatalf("failed to list cards: %v", err)
	}
	if len(withTel) != 1 || withTel[0].DisplayName() != "With Phone" {
		t.Errorf("expected only 'With Phone', got %d cards", len(withTel))
	}
}

func TestListPropertyNames(t *testing.T) {
	db := openTestDB(t)

	_ = CreateCard(db, newTestCard("A", "TEL:1", "TEL:2"))
	_ = CreateCard(db, newTestCard("B", "TEL:3"))

	counts, err := ListPropertyNames(db)
	if err != nil {
		t.Fatalf("failed to list property names: %v", err)
	}
	want := map[string]int{"FN": 2, "TEL": 2}
	if len(counts) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(counts))
	}
	for _, pc := range counts {
		if want[pc.Name] != pc.Count {
			t.Errorf("expected %s=%d, got %d", pc.Name, want[pc.Name], pc.Count)
		}
	}
}

func TestFindByTagHash(t *testing.T) {
	db := openTestDB(t)

	a := newTestCard("A", "item1.TEL;TYPE=work:1")
	b := newTestCard("B", "item1.tel;type=work:2")
	c := newTestCard("C", "TEL;TYPE=home:3")
	_ = CreateCard(db, a)
	_ = CreateCard(db, b)
	_ = CreateCard(db, c)

	matches, err := FindByTagHash(db, models.NewTag("item1.TEL;TYPE=work").Hash())
	if err != nil {
		t.Fatalf("failed to find by hash: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.CardID == c.ID {
			t.Error("expected card C not to match")
		}
	}
}
