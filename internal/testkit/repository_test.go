package testkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohypo/domain/core"
	"gohypo/domain/observable"
	"gohypo/domain/run"
	"gohypo/ports"
)

func archivedRun(t *testing.T, source string, createdAt time.Time) *run.AnalysisRun {
	t.Helper()
	cfg := DefaultConfig()
	ds, err := Generate(cfg)
	require.NoError(t, err)
	table := ds.Table(source)
	idx, tNear := ds.NearestSample(cfg.TC)

	rec := run.NewAnalysisRun(table)
	rec.CreatedAt = core.NewTimestamp(createdAt)
	rec.Results = append(rec.Results, run.Result{
		Estimate: observable.Estimate{
			Key:           table.Curves[0].Key,
			Label:         table.Curves[0].Label,
			Kind:          table.Curves[0].Kind,
			TC:            tNear,
			SelectedIndex: idx,
		},
	})
	return rec
}

func TestInMemoryRunRepository_SaveAndGet(t *testing.T) {
	repo := NewInMemoryRunRepository()
	ctx := context.Background()

	rec := archivedRun(t, "a.tsv", time.Now())
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Fingerprint, got.Fingerprint)

	// Stored copy must not alias the caller's record
	got.Source = "mutated"
	again, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.tsv", again.Source)

	_, err = repo.GetByID(ctx, core.RunID("missing"))
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

func TestInMemoryRunRepository_SaveRejectsInvalidRun(t *testing.T) {
	repo := NewInMemoryRunRepository()
	err := repo.Save(context.Background(), &run.AnalysisRun{ID: core.NewRunID()})
	require.Error(t, err)
}

func TestInMemoryRunRepository_ListOrderingAndFilters(t *testing.T) {
	repo := NewInMemoryRunRepository()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	oldest := archivedRun(t, "a.tsv", base)
	middle := archivedRun(t, "b.tsv", base.Add(time.Hour))
	newest := archivedRun(t, "a.tsv", base.Add(2*time.Hour))
	for _, rec := range []*run.AnalysisRun{oldest, middle, newest} {
		require.NoError(t, repo.Save(ctx, rec))
	}

	all, err := repo.List(ctx, ports.RunFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest.ID, all[0].ID, "newest run lists first")
	assert.Equal(t, oldest.ID, all[2].ID)

	bySource, err := repo.List(ctx, ports.RunFilters{Source: "a.tsv"})
	require.NoError(t, err)
	require.Len(t, bySource, 2)
	assert.Equal(t, newest.ID, bySource[0].ID)

	paged, err := repo.List(ctx, ports.RunFilters{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, middle.ID, paged[0].ID)

	beyond, err := repo.List(ctx, ports.RunFilters{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestInMemoryRunRepository_Delete(t *testing.T) {
	repo := NewInMemoryRunRepository()
	ctx := context.Background()

	rec := archivedRun(t, "a.tsv", time.Now())
	require.NoError(t, repo.Save(ctx, rec))
	require.NoError(t, repo.Delete(ctx, rec.ID))

	_, err := repo.GetByID(ctx, rec.ID)
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))

	err = repo.Delete(ctx, rec.ID)
	require.Error(t, err)
}

func TestInMemoryRunRepository_ForcedSaveError(t *testing.T) {
	repo := NewInMemoryRunRepository()
	repo.SaveErr = errors.New("boom")

	err := repo.Save(context.Background(), archivedRun(t, "a.tsv", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
