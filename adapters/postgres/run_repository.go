package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gohypo/domain/core"
	"gohypo/domain/run"
	"gohypo/ports"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new analysis run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Save inserts a completed analysis run
func (r *runRepository) Save(ctx context.Context, rec *run.AnalysisRun) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	resultsJSON, err := json.Marshal(rec.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	skipsJSON, err := json.Marshal(rec.Skips)
	if err != nil {
		return fmt.Errorf("failed to marshal skips: %w", err)
	}
	tableJSON, err := json.Marshal(rec.Table)
	if err != nil {
		return fmt.Errorf("failed to marshal table: %w", err)
	}

	query := `INSERT INTO analysis_runs (
		id, source, format, fingerprint, sample_count, observable_count,
		results, skips, table_data, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	)`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.Source, rec.Format, rec.Fingerprint, rec.SampleCount, rec.ObservableCount,
		resultsJSON, skipsJSON, tableJSON, rec.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}

	return nil
}

// GetByID retrieves an analysis run by its ID
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*run.AnalysisRun, error) {
	query := `SELECT
		id, source, format, fingerprint, sample_count, observable_count,
		results, skips, table_data, created_at
	FROM analysis_runs WHERE id = $1`

	var rec run.AnalysisRun
	var resultsJSON, skipsJSON, tableJSON []byte
	var createdAt time.Time

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Source, &rec.Format, &rec.Fingerprint, &rec.SampleCount, &rec.ObservableCount,
		&resultsJSON, &skipsJSON, &tableJSON, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewNotFoundError("run", id.String())
		}
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &rec.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}
	if len(skipsJSON) > 0 {
		if err := json.Unmarshal(skipsJSON, &rec.Skips); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skips: %w", err)
		}
	}
	if len(tableJSON) > 0 {
		if err := json.Unmarshal(tableJSON, &rec.Table); err != nil {
			return nil, fmt.Errorf("failed to unmarshal table: %w", err)
		}
	}
	rec.CreatedAt = core.NewTimestamp(createdAt)

	return &rec, nil
}

// List retrieves run summaries, newest first
func (r *runRepository) List(ctx context.Context, filters ports.RunFilters) ([]ports.RunSummary, error) {
	query := `SELECT
		id, source, format, sample_count, observable_count,
		jsonb_array_length(results) AS result_count,
		jsonb_array_length(skips) AS skip_count,
		created_at
	FROM analysis_runs`

	var args []interface{}
	if filters.Source != "" {
		args = append(args, filters.Source)
		query += fmt.Sprintf(" WHERE source = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	var summaries []ports.RunSummary
	for rows.Next() {
		var s ports.RunSummary
		var createdAt time.Time
		err := rows.Scan(
			&s.ID, &s.Source, &s.Format, &s.SampleCount, &s.ObservableCount,
			&s.ResultCount, &s.SkipCount, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		s.CreatedAt = core.NewTimestamp(createdAt)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// Delete removes an analysis run
func (r *runRepository) Delete(ctx context.Context, id core.RunID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM analysis_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.NewNotFoundError("run", id.String())
	}

	return nil
}
