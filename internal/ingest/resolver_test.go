package ingest

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityResolver_FindsExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM entities").
		WithArgs("ONCOR ELECTRIC").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("ent-1"))

	r := NewEntityResolver()
	got, err := r.Resolve(context.Background(), mock, "  oncor electric ", "portfolio")
	require.NoError(t, err)
	assert.Equal(t, "ent-1", got.ID)
	assert.False(t, got.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityResolver_CreatesMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM entities").
		WithArgs("NEW HOLDINGS LLC").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO entities").
		WithArgs(pgxmock.AnyArg(), "New Holdings LLC", "LEAD_SOURCE", "rich-leads").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r := NewEntityResolver()
	got, err := r.Resolve(context.Background(), mock, "New Holdings LLC", "rich-leads")
	require.NoError(t, err)
	assert.True(t, got.Created)
	assert.NotEmpty(t, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityResolver_CacheAfterRemember(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id FROM entities").
		WithArgs("ACME").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("ent-9"))

	r := NewEntityResolver()
	first, err := r.Resolve(context.Background(), mock, "Acme", "rare-leads")
	require.NoError(t, err)

	// Not cached until Remember: a second resolve before Remember would hit
	// the store again, so only call Remember once the tx is committed.
	r.Remember(first)

	second, err := r.Resolve(context.Background(), mock, "ACME ", "rare-leads")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityResolver_EmptyName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := NewEntityResolver()
	_, err = r.Resolve(context.Background(), mock, "   ", "rich-leads")
	require.Error(t, err)
}
