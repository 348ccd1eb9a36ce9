package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// EnsureSchema creates the archive tables when missing. Statements are run in
// a single transaction.
func EnsureSchema(pg *sql.DB) error {
	tx, err := pg.Begin()
	if err != nil {
		return fmt.Errorf("transaction begin: %s", err)
	}

	for _, query := range strings.Split(schema, "\n---\n") {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}

		if _, err := tx.Exec(query); err != nil {
			_ = tx.Rollback()
			return &QueryError{Query: query, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit: %s", err)
	}

	return nil
}

const schema = `

CREATE TABLE IF NOT EXISTS rounds (
	round BIGINT NOT NULL PRIMARY KEY,
	proposer TEXT NOT NULL,
	block_hash TEXT NOT NULL,
	block_time TIMESTAMPTZ NOT NULL,
	txn_count INT NOT NULL,
	avg_block_txn_speed DOUBLE PRECISION NOT NULL,
	transaction_ids TEXT[] NOT NULL,
	asset_ids BIGINT[] NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

---

CREATE INDEX IF NOT EXISTS rounds_block_time_idx ON rounds (block_time);
`

type QueryError struct {
	Query string
	Args  []interface{}
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %s\n%q", e.Err, e.Query)
}
