// ABOUTME: Card operations using Charm KV storage
// ABOUTME: Uses type-prefixed keys (card:uuid) holding JSON card data

package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/harper/vcardz/internal/models"
)

const (
	// CardPrefix is the key prefix for cards.
	CardPrefix = "card:"
)

var (
	ErrPrefixTooShort  = errors.New("prefix must be at least 6 characters")
	ErrAmbiguousPrefix = errors.New("prefix matches multiple cards")
	ErrCardNotFound    = errors.New("card not found")
)

// cardKey returns the key for a card.
func cardKey(id uuid.UUID) []byte {
	return []byte(CardPrefix + id.String())
}

func encodeCard(card *models.Card) ([]byte, error) {
	encoded, err := json.Marshal(models.ToData(card))
	if err != nil {
		return nil, fmt.Errorf("marshal card: %w", err)
	}
	return encoded, nil
}

func decodeCard(val []byte) (*models.Card, error) {
	var cd models.CardData
	if err := json.Unmarshal(val, &cd); err != nil {
		return nil, fmt.Errorf("unmarshal card: %w", err)
	}
	return cd.ToModel()
}

// matchKeys keeps the keys that start with prefix.
func matchKeys(keys [][]byte, prefix []byte) [][]byte {
	var out [][]byte
	for _, key := range keys {
		if bytes.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}

// PutCards creates or replaces each card.
func (c *Client) PutCards(cards []*models.Card) error {
	return c.write(func(k *kv.KV) error {
		for _, card := range cards {
			encoded, err := encodeCard(card)
			if err != nil {
				return err
			}
			if err := k.Set(cardKey(card.ID), encoded); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetCardByID retrieves a card by its UUID.
func (c *Client) GetCardByID(id uuid.UUID) (*models.Card, error) {
	var card *models.Card
	err := c.read(func(k *kv.KV) error {
		val, err := k.Get(cardKey(id))
		if err != nil {
			return err
		}
		card, err = decodeCard(val)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrCardNotFound
	}
	return card, err
}

// GetCardByPrefix finds a card by ID prefix (minimum 6 chars). A full UUID
// is looked up directly.
func (c *Client) GetCardByPrefix(prefix string) (*models.Card, error) {
	if id, err := uuid.Parse(prefix); err == nil {
		return c.GetCardByID(id)
	}
	if len(prefix) < 6 {
		return nil, ErrPrefixTooShort
	}

	cards, err := c.listByPrefix([]byte(CardPrefix + strings.ToLower(prefix)))
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrCardNotFound
	}
	if len(cards) > 1 {
		return nil, fmt.Errorf("%w: %d matches", ErrAmbiguousPrefix, len(cards))
	}
	return cards[0], nil
}

// ListCards returns every card in the store.
func (c *Client) ListCards() ([]*models.Card, error) {
	return c.listByPrefix([]byte(CardPrefix))
}

func (c *Client) listByPrefix(prefix []byte) ([]*models.Card, error) {
	var cards []*models.Card
	err := c.read(func(k *kv.KV) error {
		keys, err := k.Keys()
		if err != nil {
			return err
		}
		for _, key := range matchKeys(keys, prefix) {
			val, err := k.Get(key)
			if err != nil {
				return fmt.Errorf("get %s: %w", key, err)
			}
			card, err := decodeCard(val)
			if err != nil {
				return err
			}
			cards = append(cards, card)
		}
		return nil
	})
	return cards, err
}

// DeleteCards removes the given cards from the store. Missing keys are
// not an error.
func (c *Client) DeleteCards(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return c.write(func(k *kv.KV) error {
		for _, id := range ids {
			if err := k.Delete(cardKey(id)); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
		}
		return nil
	})
}
