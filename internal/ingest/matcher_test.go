package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerocell/towersync/internal/model"
)

func TestTowerMatcher_MatchExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id FROM towers").
		WithArgs(32.77, -96.79, 0.0001).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("UPDATE towers SET last_seen_at").
		WithArgs(now, int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	m := NewTowerMatcher(0.0001)
	id, created, err := m.Match(context.Background(), mock, 32.77, -96.79, model.TowerTypeMacro, now)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTowerMatcher_CreatesWhenNoneNearby(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id FROM towers").
		WithArgs(29.42, -98.49, 0.0001).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectQuery("INSERT INTO towers").
		WithArgs(29.42, -98.49, model.TowerTypeMicro, now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	m := NewTowerMatcher(0.0001)
	id, created, err := m.Match(context.Background(), mock, 29.42, -98.49, model.TowerTypeMicro, now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
