// ABOUTME: Database operations for cards and their indexed property lines.
// ABOUTME: Provides CRUD, prefix lookup, and property-name filtering.

package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/vcardz/internal/models"
)

var ErrPrefixTooShort = errors.New("prefix must be at least 6 characters")
var ErrAmbiguousPrefix = errors.New("prefix matches multiple cards")
var ErrCardNotFound = errors.New("card not found")

type cardRow struct {
	displayName string
	lines       string
	data        string
}

func encodeCard(card *models.Card) (*cardRow, error) {
	data, err := json.Marshal(models.ToData(card))
	if err != nil {
		return nil, fmt.Errorf("marshal card: %w", err)
	}
	return &cardRow{
		displayName: card.DisplayName(),
		lines:       strings.Join(card.Lines(), "\n"),
		data:        string(data),
	}, nil
}

func decodeCard(data string) (*models.Card, error) {
	var cd models.CardData
	if err := json.Unmarshal([]byte(data), &cd); err != nil {
		return nil, fmt.Errorf("unmarshal card: %w", err)
	}
	return cd.ToModel()
}

func writeProperties(tx *sql.Tx, card *models.Card) error {
	if _, err := tx.Exec(`DELETE FROM card_properties WHERE card_id = ?`, card.ID.String()); err != nil {
		return err
	}
	position := 0
	for _, name := range card.Keys() {
		for _, p := range card.Properties(name) {
			_, err := tx.Exec(
				`INSERT INTO card_properties (card_id, position, name, line, tag_hash)
				 VALUES (?, ?, ?, ?, ?)`,
				card.ID.String(), position, name, p.String(), int64(p.Tag().Sum()),
			)
			if err != nil {
				return err
			}
			position++
		}
	}
	return nil
}

func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func CreateCard(db *sql.DB, card *models.Card) error {
	row, err := encodeCard(card)
	if err != nil {
		return err
	}
	return inTx(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO cards (id, display_name, lines, data, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			card.ID.String(), row.displayName, row.lines, row.data, card.CreatedAt, card.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if err := clearTombstone(tx, card.ID); err != nil {
			return err
		}
		return writeProperties(tx, card)
	})
}

// UpdateCard stores the card's current slots and bumps UpdatedAt.
func UpdateCard(db *sql.DB, card *models.Card) error {
	card.Touch()
	row, err := encodeCard(card)
	if err != nil {
		return err
	}
	return inTx(db, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			`UPDATE cards SET display_name = ?, lines = ?, data = ?, updated_at = ? WHERE id = ?`,
			row.displayName, row.lines, row.data, card.UpdatedAt, card.ID.String(),
		)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCardNotFound
		}
		return writeProperties(tx, card)
	})
}

// UpsertCard inserts or replaces a card, keeping its timestamps. Used when
// pulling cards from a remote store.
func UpsertCard(db *sql.DB, card *models.Card) error {
	row, err := encodeCard(card)
	if err != nil {
		return err
	}
	return inTx(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO cards (id, display_name, lines, data, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   display_name = excluded.display_name,
			   lines = excluded.lines,
			   data = excluded.data,
			   updated_at = excluded.updated_at`,
			card.ID.String(), row.displayName, row.lines, row.data, card.CreatedAt, card.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if err := clearTombstone(tx, card.ID); err != nil {
			return err
		}
		return writeProperties(tx, card)
	})
}

func GetCardByID(db *sql.DB, id uuid.UUID) (*models.Card, error) {
	var data string
	err := db.QueryRow(`SELECT data FROM cards WHERE id = ?`, id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeCard(data)
}

func GetCardByPrefix(db *sql.DB, prefix string) (*models.Card, error) {
	if len(prefix) < 6 {
		return nil, ErrPrefixTooShort
	}

	cards, err := queryCards(db, `SELECT data FROM cards WHERE substr(id, 1, ?) = ?`, len(prefix), strings.ToLower(prefix))
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

// GetCard resolves a full UUID or an ID prefix.
func GetCard(db *sql.DB, ref string) (*models.Card, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return GetCardByID(db, id)
	}
	return GetCardByPrefix(db, ref)
}

// ListCards returns the most recently updated cards, optionally only those
// that carry the property prop.
func ListCards(db *sql.DB, prop *string, limit int) ([]*models.Card, error) {
	if prop != nil {
		return queryCards(db,
			`SELECT c.data FROM cards c
			 WHERE EXISTS (SELECT 1 FROM card_properties p WHERE p.card_id = c.id AND p.name = ?)
			 ORDER BY c.updated_at DESC
			 LIMIT ?`,
			strings.ToUpper(*prop), limit,
		)
	}
	return queryCards(db, `SELECT data FROM cards ORDER BY updated_at DESC LIMIT ?`, limit)
}

func queryCards(db *sql.DB, query string, args ...any) ([]*models.Card, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.Card
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		card, err := decodeCard(data)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// DeleteCard removes a card and leaves a tombstone so a sync pull does not
// bring it back.
func DeleteCard(db *sql.DB, id uuid.UUID) error {
	return inTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM card_properties WHERE card_id = ?`, id.String()); err != nil {
			return err
		}
		result, err := tx.Exec(`DELETE FROM cards WHERE id = ?`, id.String())
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrCardNotFound
		}
		_, err = tx.Exec(
			`INSERT INTO deleted_cards (id, deleted_at) VALUES (?, ?)
			 ON CONFLICT(id) DO UPDATE SET deleted_at = excluded.deleted_at`,
			id.String(), time.Now().UTC(),
		)
		return err
	})
}

type Tombstone struct {
	CardID    uuid.UUID
	DeletedAt time.Time
}

func clearTombstone(tx *sql.Tx, id uuid.UUID) error {
	_, err := tx.Exec(`DELETE FROM deleted_cards WHERE id = ?`, id.String())
	return err
}

// GetTombstone returns the tombstone for id, or nil if the card was never
// deleted here.
func GetTombstone(db *sql.DB, id uuid.UUID) (*Tombstone, error) {
	ts := &Tombstone{CardID: id}
	err := db.QueryRow(`SELECT deleted_at FROM deleted_cards WHERE id = ?`, id.String()).Scan(&ts.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// ListTombstones returns every deleted card, oldest first.
func ListTombstones(db *sql.DB) ([]*Tombstone, error) {
	rows, err := db.Query(`SELECT id, deleted_at FROM deleted_cards ORDER BY deleted_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tombstones []*Tombstone
	for rows.Next() {
		var idStr string
		ts := &Tombstone{}
		if err := rows.Scan(&idStr, &ts.DeletedAt); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid card ID in database: %w", err)
		}
		ts.CardID = id
		tombstones = append(tombstones, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tombstones, nil
}

type PropertyCount struct {
	Name  string
	Count int
}

// ListPropertyNames counts how many cards carry each property name.
func ListPropertyNames(db *sql.DB) ([]*PropertyCount, error) {
	rows, err := db.Query(
		`SELECT name, COUNT(DISTINCT card_id) FROM card_properties
		 GROUP BY name
		 ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []*PropertyCount
	for rows.Next() {
		pc := &PropertyCount{}
		if err := rows.Scan(&pc.Name, &pc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

type PropertyMatch struct {
	CardID    uuid.UUID
	Name      string
	Line      string
	UpdatedAt time.Time
}

// FindByTagHash returns stored lines whose tag hashes to hash, which finds
// the same group/name/attribute combination across cards.
func FindByTagHash(db *sql.DB, hash uint32) ([]*PropertyMatch, error) {
	rows, err := db.Query(
		`SELECT p.card_id, p.name, p.line, c.updated_at
		 FROM card_properties p
		 JOIN cards c ON c.id = p.card_id
		 WHERE p.tag_hash = ?
		 ORDER BY c.updated_at DESC, p.position`,
		int64(hash),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var matches []*PropertyMatch
	for rows.Next() {
		m := &PropertyMatch{}
		var idStr string
		if err := rows.Scan(&idStr, &m.Name, &m.Line, &m.UpdatedAt); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid card ID in database: %w", err)
		}
		m.CardID = id
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
