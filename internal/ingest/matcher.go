package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/aerocell/towersync/internal/db"
	"github.com/aerocell/towersync/internal/model"
)

// TowerMatcher finds an existing tower near a coordinate pair or creates a
// new one. The proximity test compares latitude and longitude deltas
// independently against the tolerance, not geodesic distance; changing that
// would change dedup outcomes on existing data.
type TowerMatcher struct {
	tolerance float64
}

// NewTowerMatcher creates a matcher with the given per-axis degree
// tolerance (~10m at 1e-4).
func NewTowerMatcher(tolerance float64) *TowerMatcher {
	return &TowerMatcher{tolerance: tolerance}
}

// Match returns the id of the tower at (lat, lng), creating one if no
// existing tower lies within tolerance. On a match, last_seen_at is
// refreshed. Multiple candidates resolve to the lowest id.
func (m *TowerMatcher) Match(ctx context.Context, q db.Querier, lat, lng float64, towerType model.TowerType, now time.Time) (int64, bool, error) {
	var id int64
	err := q.QueryRow(ctx,
		`SELECT id FROM towers
		 WHERE ABS(latitude - $1) < $3 AND ABS(longitude - $2) < $3
		 ORDER BY id LIMIT 1`,
		lat, lng, m.tolerance,
	).Scan(&id)

	switch {
	case err == nil:
		if _, err := q.Exec(ctx,
			`UPDATE towers SET last_seen_at = $1, updated_at = $1 WHERE id = $2`,
			now, id,
		); err != nil {
			return 0, false, eris.Wrapf(err, "ingest: refresh tower %d", id)
		}
		return id, false, nil

	case errors.Is(err, pgx.ErrNoRows):
		// fall through to create

	default:
		return 0, false, eris.Wrap(err, "ingest: match tower")
	}

	t := model.Tower{
		Latitude:    lat,
		Longitude:   lng,
		TowerType:   towerType,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}
	err = q.QueryRow(ctx,
		`INSERT INTO towers (latitude, longitude, tower_type, first_seen_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id`,
		t.Latitude, t.Longitude, t.TowerType, t.FirstSeenAt,
	).Scan(&t.ID)
	if err != nil {
		return 0, false, eris.Wrap(err, "ingest: create tower")
	}
	return t.ID, true, nil
}
