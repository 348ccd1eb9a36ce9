package store

import (
	"context"
	"database/sql"
	"math"

	sq "github.com/Masterminds/squirrel"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/weave/errors"
	"github.com/lib/pq"
)

// MaxPageSize is the largest page RoundsPage serves.
const MaxPageSize = 100

// NewStore returns a store that provides an access to the round archive.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type Store struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

const roundColumns = "round, proposer, block_hash, block_time, txn_count, avg_block_txn_speed, transaction_ids, asset_ids"

// InsertRound archives a single round.
// This method returns ErrConflict if the round is already archived.
func (s *Store) InsertRound(ctx context.Context, r models.ArchivedRound) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rounds (round, proposer, block_hash, block_time, txn_count, avg_block_txn_speed, transaction_ids, asset_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, int64(r.Round), r.Proposer, r.Hash, r.Time.UTC(), r.TxnCount, r.AvgBlockTxnSpeed,
		pq.Array(nonNilStrings(r.TransactionIDs)), pq.Array(nonNilInts(r.AssetIDs)))
	return wrapPgErr(err, "insert round")
}

// Publish archives the round carried by a push channel message. Rounds that
// are already archived are ignored.
func (s *Store) Publish(ctx context.Context, msg models.FeedMessage) error {
	err := s.InsertRound(ctx, models.NewArchivedRound(msg))
	if ErrConflict.Is(err) {
		return nil
	}
	return err
}

// LatestRound returns the archived round with the greatest number. This method
// returns ErrNotFound if the archive is empty.
func (s *Store) LatestRound(ctx context.Context) (*models.ArchivedRound, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+roundColumns+`
		FROM rounds
		ORDER BY round DESC
		LIMIT 1
	`)
	r, err := scanRound(row)
	if err != nil {
		return nil, errors.Wrap(err, "latest round")
	}
	return r, nil
}

// LoadRound returns a single archived round. This method returns ErrNotFound
// if the round is not archived.
func (s *Store) LoadRound(ctx context.Context, round uint64) (*models.ArchivedRound, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+roundColumns+`
		FROM rounds
		WHERE round = $1
	`, int64(round))
	r, err := scanRound(row)
	if err != nil {
		return nil, errors.Wrapf(err, "round %d", round)
	}
	return r, nil
}

// RoundsPage returns archived rounds, newest first. Pages are 1-based.
// ErrLimit is returned if pageSize exceeds MaxPageSize.
func (s *Store) RoundsPage(ctx context.Context, page, pageSize int) (*models.Page[models.ArchivedRound], error) {
	if pageSize > MaxPageSize {
		return nil, errors.Wrapf(ErrLimit, "page size %d", pageSize)
	}
	if pageSize < 1 {
		return nil, errors.Wrapf(errors.ErrInput, "page size %d", pageSize)
	}
	if page < 1 {
		page = 1
	}
	// Keep the offset within BIGINT, Postgres returns an empty page beyond
	// the last row.
	if limit := math.MaxInt64/pageSize - 1; page > limit {
		page = limit
	}

	var total int
	err := s.psql.Select("COUNT(*)").From("rounds").
		RunWith(s.db).QueryRowContext(ctx).Scan(&total)
	if err != nil {
		return nil, wrapPgErr(err, "count rounds")
	}

	rows, err := s.psql.Select(roundColumns).From("rounds").
		OrderBy("round DESC").
		Limit(uint64(pageSize)).
		Offset(uint64(page-1) * uint64(pageSize)).
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, wrapPgErr(err, "select rounds")
	}
	defer rows.Close()

	out := models.Page[models.ArchivedRound]{
		Items:      []models.ArchivedRound{},
		NumOfPages: (total + pageSize - 1) / pageSize,
	}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning rounds")
		}
		out.Items = append(out.Items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgErr(err, "scanning rounds")
	}
	if out.NumOfPages < 1 {
		out.NumOfPages = 1
	}
	return &out, nil
}

// RoundRange returns the lowest and highest archived round. ErrNotFound is
// returned if the archive is empty.
func (s *Store) RoundRange(ctx context.Context) (lowest, highest uint64, err error) {
	var lo, hi sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT MIN(round), MAX(round) FROM rounds`).Scan(&lo, &hi)
	if err != nil {
		return 0, 0, wrapPgErr(err, "round range")
	}
	if !lo.Valid || !hi.Valid {
		return 0, 0, errors.Wrap(errors.ErrNotFound, "no rounds")
	}
	return uint64(lo.Int64), uint64(hi.Int64), nil
}

// MissingRounds returns every round within [from, to] that is not archived,
// in ascending order.
func (s *Store) MissingRounds(ctx context.Context, from, to uint64) ([]uint64, error) {
	if from > to {
		return nil, errors.Wrapf(ErrRange, "%d > %d", from, to)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.i
		FROM generate_series($1::BIGINT, $2::BIGINT) AS s(i)
		LEFT JOIN rounds ON rounds.round = s.i
		WHERE rounds.round IS NULL
		ORDER BY s.i
	`, int64(from), int64(to))
	if err != nil {
		return nil, wrapPgErr(err, "missing rounds")
	}
	defer rows.Close()

	var missing []uint64
	for rows.Next() {
		var r int64
		if err := rows.Scan(&r); err != nil {
			return nil, wrapPgErr(err, "scanning missing rounds")
		}
		missing = append(missing, uint64(r))
	}
	return missing, wrapPgErr(rows.Err(), "scanning missing rounds")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRound(row scanner) (*models.ArchivedRound, error) {
	var (
		r        models.ArchivedRound
		round    int64
		assetIDs pq.Int64Array
		txIDs    pq.StringArray
	)
	err := row.Scan(&round, &r.Proposer, &r.Hash, &r.Time, &r.TxnCount, &r.AvgBlockTxnSpeed, &txIDs, &assetIDs)
	if err != nil {
		return nil, castPgErr(err)
	}
	r.Round = uint64(round)
	// normalize it here, as not always stored like this in the db
	r.Time = r.Time.UTC()
	r.TransactionIDs = nonNilStrings(txIDs)
	r.AssetIDs = nonNilInts(assetIDs)
	return &r, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int64) []int64 {
	if s == nil {
		return []int64{}
	}
	return s
}
