package store

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/weave/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archivedRound(round uint64) models.ArchivedRound {
	return models.ArchivedRound{
		Round:    round,
		Proposer: "PROPOSER",
		Hash:     "HASH",
		// Postgres TIMESTAMPTZ precision is microseconds.
		Time:             time.Now().UTC().Round(time.Microsecond),
		TxnCount:         2,
		AvgBlockTxnSpeed: 4.4,
		TransactionIDs:   []string{"A", "B"},
		AssetIDs:         []int64{31566704},
	}
}

func TestLatestRound(t *testing.T) {
	db, cleanup := EnsureDB(t)
	defer cleanup()

	ctx := context.Background()

	s := NewStore(db)

	if _, err := s.LatestRound(ctx); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want ErrNotFound, got %q", err)
	}

	for i := uint64(5); i < 100; i += 20 {
		round := archivedRound(i)
		if err := s.InsertRound(ctx, round); err != nil {
			t.Fatalf("cannot insert round: %s", err)
		}

		got, err := s.LatestRound(ctx)
		if err != nil {
			t.Fatalf("cannot get latest round: %s", err)
		}

		if !reflect.DeepEqual(got, &round) {
			t.Logf(" got %#v", got)
			t.Logf("want %#v", &round)
			t.Fatal("unexpected result")
		}
	}

	if err := s.InsertRound(ctx, archivedRound(5)); !ErrConflict.Is(err) {
		t.Fatalf("want ErrConflict, got %q", err)
	}
}

func TestArchivePagesAndGaps(t *testing.T) {
	db, cleanup := EnsureDB(t)
	defer cleanup()

	ctx := context.Background()
	s := NewStore(db)

	for _, r := range []uint64{10, 11, 13, 16} {
		msg := models.FeedMessage{
			Block:          models.Block{Round: r, Timestamp: 1600000000},
			TransactionIDs: []string{"T"},
		}
		if err := s.Publish(ctx, msg); err != nil {
			t.Fatalf("cannot publish round %d: %s", r, err)
		}
		// Publishing twice is not an error.
		if err := s.Publish(ctx, msg); err != nil {
			t.Fatalf("cannot republish round %d: %s", r, err)
		}
	}

	page, err := s.RoundsPage(ctx, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, page.NumOfPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, uint64(10), page.Items[0].Round)

	lo, hi, err := s.RoundRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), lo)
	assert.Equal(t, uint64(16), hi)

	missing, err := s.MissingRounds(ctx, lo, hi)
	require.NoError(t, err)
	assert.Equal(t, []uint64{12, 14, 15}, missing)

	got, err := s.LoadRound(ctx, 13)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TxnCount)
	assert.Equal(t, []int64{}, got.AssetIDs)

	_, err = s.LoadRound(ctx, 12)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewStore(db), mock
}

func TestInsertRoundConflictIsIgnoredOnPublish(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO rounds").
		WithArgs(int64(7), "P", "", sqlmock.AnyArg(), 0, 0.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})
	mock.ExpectExec("INSERT INTO rounds").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})

	msg := models.FeedMessage{Block: models.Block{Round: 7, Proposer: "P"}}
	err := s.InsertRound(context.Background(), models.NewArchivedRound(msg))
	assert.True(t, ErrConflict.Is(err), "got %v", err)

	assert.NoError(t, s.Publish(context.Background(), msg))
}

func TestLoadRoundNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM rounds WHERE round = ").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"round"}))

	_, err := s.LoadRound(context.Background(), 42)
	assert.True(t, errors.ErrNotFound.Is(err), "got %v", err)
}

func TestRoundsPageQuery(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Date(2020, 9, 13, 12, 26, 40, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rounds`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(26))
	mock.ExpectQuery(`SELECT (.+) FROM rounds ORDER BY round DESC LIMIT 25 OFFSET 25`).
		WillReturnRows(sqlmock.NewRows([]string{
			"round", "proposer", "block_hash", "block_time", "txn_count", "avg_block_txn_speed", "transaction_ids", "asset_ids",
		}).AddRow(1, "P", "H", ts, 3, 4.5, "{A,B,C}", "{}"))

	page, err := s.RoundsPage(context.Background(), 2, 25)
	require.NoError(t, err)
	assert.Equal(t, 2, page.NumOfPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.ArchivedRound{
		Round:            1,
		Proposer:         "P",
		Hash:             "H",
		Time:             ts,
		TxnCount:         3,
		AvgBlockTxnSpeed: 4.5,
		TransactionIDs:   []string{"A", "B", "C"},
		AssetIDs:         []int64{},
	}, page.Items[0])
}

func TestRoundsPageOffsetStaysInRange(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM rounds`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT (.+) FROM rounds ORDER BY round DESC LIMIT 25 OFFSET 9223372036854775750`).
		WillReturnRows(sqlmock.NewRows([]string{"round"}))

	page, err := s.RoundsPage(context.Background(), math.MaxInt, 25)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.NumOfPages)
}

func TestRoundsPageLimit(t *testing.T) {
	s, _ := newMockStore(t)

	_, err := s.RoundsPage(context.Background(), 1, MaxPageSize+1)
	assert.True(t, ErrLimit.Is(err))
}

func TestMissingRoundsRange(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.MissingRounds(context.Background(), 10, 9)
	assert.True(t, ErrRange.Is(err))

	mock.ExpectQuery("generate_series").
		WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"i"}).AddRow(2).AddRow(4))

	missing, err := s.MissingRounds(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 4}, missing)
}

func TestRoundRangeEmpty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT MIN\(round\), MAX\(round\) FROM rounds`).
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(nil, nil))

	_, _, err := s.RoundRange(context.Background())
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestCastPgErr(t *testing.T) {
	cases := map[string]struct {
		err  error
		want *errors.Error
	}{
		"unique violation": {err: &pq.Error{Code: "23505", Message: "duplicate key"}, want: ErrConflict},
		"out of range":     {err: &pq.Error{Code: "22003", Message: "bigint out of range"}, want: errors.ErrInput},
		"no data":          {err: &pq.Error{Code: "02000"}, want: errors.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := wrapPgErr(tc.err, "op")
			assert.True(t, tc.want.Is(err), "got %v", err)
		})
	}

	other := &pq.Error{Code: "53300"}
	assert.False(t, ErrConflict.Is(castPgErr(other)))
	assert.Nil(t, wrapPgErr(nil, "op"))
}
