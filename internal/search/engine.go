// Package search materializes relational tower and entity state into
// denormalized Meilisearch documents.
package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aerocell/towersync/internal/db"
	"github.com/aerocell/towersync/internal/model"
	"github.com/aerocell/towersync/internal/resilience"
	"github.com/aerocell/towersync/pkg/meili"
)

const (
	// IndexTowers and IndexEntities are the Meilisearch index uids.
	IndexTowers   = "towers"
	IndexEntities = "entities"

	// syncTarget keys the sync_log ledger; full and incremental runs share
	// one watermark.
	syncTarget = "meilisearch"
)

// Stats reports how many documents a sync run pushed.
type Stats struct {
	Towers   int64 `json:"towers"`
	Entities int64 `json:"entities"`
}

// Engine drives full and incremental document syncs.
type Engine struct {
	pool        db.Pool
	client      meili.Client
	synclog     *SyncLog
	log         *zap.Logger
	batchSize   int
	concurrency int
	retry       resilience.RetryConfig
}

// NewEngine wires a sync engine. batchSize bounds one indexing payload;
// concurrency bounds parallel per-id rebuilds during incremental sync.
func NewEngine(pool db.Pool, client meili.Client, batchSize, concurrency int, log *zap.Logger) *Engine {
	if batchSize <= 0 {
		batchSize = 1000
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("meilisearch", "add_documents")
	return &Engine{
		pool:        pool,
		client:      client,
		synclog:     NewSyncLog(pool),
		log:         log,
		batchSize:   batchSize,
		concurrency: concurrency,
		retry:       retry,
	}
}

// EnsureIndexes creates both indexes if missing and pushes their settings.
// Safe to call on every run.
func (e *Engine) EnsureIndexes(ctx context.Context) error {
	if err := e.client.EnsureIndex(ctx, IndexTowers, "id"); err != nil {
		return err
	}
	if _, err := e.client.UpdateSettings(ctx, IndexTowers, meili.Settings{
		SearchableAttributes: []string{
			"entity_name", "contact_names", "address", "city", "state", "zip_code", "carrier",
		},
		FilterableAttributes: []string{
			"company_ids", "state", "city", "carrier", "tower_type", "entity_id", "_geo",
		},
		SortableAttributes: []string{
			"city", "state", "entity_name", "created_at",
		},
	}); err != nil {
		return err
	}

	if err := e.client.EnsureIndex(ctx, IndexEntities, "id"); err != nil {
		return err
	}
	if _, err := e.client.UpdateSettings(ctx, IndexEntities, meili.Settings{
		SearchableAttributes: []string{"name", "contact_names"},
		FilterableAttributes: []string{"company_ids", "entity_type"},
		SortableAttributes:   []string{"name", "tower_count"},
	}); err != nil {
		return err
	}
	return nil
}

// FullSync rebuilds every document in both indexes, paging id-ordered batches
// until an empty page. The run is recorded in sync_log either way; a failed
// run never advances the incremental watermark.
func (e *Engine) FullSync(ctx context.Context) (Stats, error) {
	syncID, err := e.synclog.Start(ctx, syncTarget)
	if err != nil {
		return Stats{}, err
	}

	stats, err := e.fullSync(ctx)
	if err != nil {
		if ferr := e.synclog.Fail(ctx, syncID, err.Error()); ferr != nil {
			e.log.Warn("failed to record sync failure", zap.Error(ferr))
		}
		return stats, err
	}

	err = e.synclog.Complete(ctx, syncID, &SyncResult{
		RowsSynced: stats.Towers + stats.Entities,
		Metadata:   map[string]any{"mode": "full", "towers": stats.Towers, "entities": stats.Entities},
	})
	return stats, err
}

func (e *Engine) fullSync(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := resilience.Do(ctx, e.retry, e.EnsureIndexes); err != nil {
		return stats, err
	}

	for offset := 0; ; offset += e.batchSize {
		batch, err := loadEntityBatch(ctx, e.pool, e.batchSize, offset)
		if err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			break
		}
		docs := make([]model.EntityDocument, 0, len(batch))
		for _, r := range batch {
			docs = append(docs, buildEntityDocument(r))
		}
		if err := e.pushDocuments(ctx, IndexEntities, docs); err != nil {
			return stats, err
		}
		stats.Entities += int64(len(docs))
		e.log.Info("synced entity batch", zap.Int64("total", stats.Entities))
	}

	for offset := 0; ; offset += e.batchSize {
		batch, err := loadTowerBatch(ctx, e.pool, e.batchSize, offset)
		if err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			break
		}
		docs := make([]model.TowerDocument, 0, len(batch))
		for _, r := range batch {
			docs = append(docs, buildTowerDocument(r))
		}
		if err := e.pushDocuments(ctx, IndexTowers, docs); err != nil {
			return stats, err
		}
		stats.Towers += int64(len(docs))
		e.log.Info("synced tower batch", zap.Int64("total", stats.Towers))
	}

	return stats, nil
}

// IncrementalSync rebuilds only documents whose underlying rows changed since
// the last successful run. With no prior watermark it falls back to a full
// sync.
func (e *Engine) IncrementalSync(ctx context.Context) (Stats, error) {
	since, err := e.synclog.LastSuccess(ctx, syncTarget)
	if err != nil {
		return Stats{}, err
	}
	if since == nil {
		e.log.Info("no prior successful sync, falling back to full sync")
		return e.FullSync(ctx)
	}
	return e.IncrementalSyncFrom(ctx, *since)
}

// IncrementalSyncFrom rebuilds documents changed since an explicit watermark,
// bypassing the sync log lookup.
func (e *Engine) IncrementalSyncFrom(ctx context.Context, since time.Time) (Stats, error) {
	syncID, err := e.synclog.Start(ctx, syncTarget)
	if err != nil {
		return Stats{}, err
	}

	stats, err := e.incrementalSync(ctx, since)
	if err != nil {
		if ferr := e.synclog.Fail(ctx, syncID, err.Error()); ferr != nil {
			e.log.Warn("failed to record sync failure", zap.Error(ferr))
		}
		return stats, err
	}

	err = e.synclog.Complete(ctx, syncID, &SyncResult{
		RowsSynced: stats.Towers + stats.Entities,
		Metadata:   map[string]any{"mode": "incremental", "since": since.UTC().String()},
	})
	return stats, err
}

func (e *Engine) incrementalSync(ctx context.Context, since time.Time) (Stats, error) {
	var stats Stats

	towerIDs, err := updatedTowerIDs(ctx, e.pool, since)
	if err != nil {
		return stats, err
	}
	entityIDs, err := updatedEntityIDs(ctx, e.pool, since)
	if err != nil {
		return stats, err
	}
	e.log.Info("incremental sync scope",
		zap.Time("since", since),
		zap.Int("towers", len(towerIDs)),
		zap.Int("entities", len(entityIDs)))

	var towers, entities atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, id := range towerIDs {
		g.Go(func() error {
			r, err := loadTower(gctx, e.pool, id)
			if err != nil {
				return err
			}
			if r == nil {
				return nil // deleted between scoping and rebuild
			}
			if err := e.pushDocuments(gctx, IndexTowers, []model.TowerDocument{buildTowerDocument(*r)}); err != nil {
				return err
			}
			towers.Add(1)
			return nil
		})
	}

	for _, id := range entityIDs {
		g.Go(func() error {
			r, err := loadEntity(gctx, e.pool, id)
			if err != nil {
				return err
			}
			if r == nil {
				return nil
			}
			if err := e.pushDocuments(gctx, IndexEntities, []model.EntityDocument{buildEntityDocument(*r)}); err != nil {
				return err
			}
			entities.Add(1)
			return nil
		})
	}

	err = g.Wait()
	stats.Towers = towers.Load()
	stats.Entities = entities.Load()
	return stats, err
}

// Status returns the sync run history, newest first.
func (e *Engine) Status(ctx context.Context) ([]SyncEntry, error) {
	return e.synclog.ListAll(ctx)
}

// pushDocuments sends one batch, retrying transient Meilisearch failures.
func (e *Engine) pushDocuments(ctx context.Context, index string, docs any) error {
	_, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*meili.TaskInfo, error) {
		return e.client.AddDocuments(ctx, index, docs)
	})
	if err != nil {
		return eris.Wrapf(err, "search: push documents to %s", index)
	}
	return nil
}
