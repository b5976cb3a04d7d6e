// ABOUTME: FTS5 full-text search operations for cards.
// ABOUTME: Provides ranked search across display names and property lines.

package db

import (
	"database/sql"

	"github.com/harper/vcardz/internal/models"
)

type SearchResult struct {
	*models.Card
	Rank float64
}

func SearchCards(db *sql.DB, query string, limit int) ([]*SearchResult, error) {
	rows, err := db.Query(
		`SELECT c.data, rank
		 FROM cards_fts
		 JOIN cards c ON cards_fts.rowid = c.rowid
		 WHERE cards_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []*SearchResult
	for rows.Next() {
		var data string
		result := &SearchResult{}
		if err := rows.Scan(&data, &result.Rank); err != nil {
			return nil, err
		}
		result.Card, err = decodeCard(data)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
