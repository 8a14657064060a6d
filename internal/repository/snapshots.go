package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrNoSnapshot is returned when a game has no persisted state.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotRepository journals game snapshots. A nil repository is valid and
// discards everything, so callers never need to branch on persistence being
// configured.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a snapshot repository over the pool. Pass
// nil db for a discarding repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	if db == nil {
		return nil
	}
	return &SnapshotRepository{db: db}
}

// Save journals one snapshot. Replays of the same (game, seq) are ignored:
// the first write wins, which keeps retries idempotent.
func (r *SnapshotRepository) Save(ctx context.Context, gameID string, seq int, state []byte, checksum string) error {
	if r == nil {
		return nil
	}
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO game_snapshots (game_id, seq, state, checksum)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, seq) DO NOTHING`,
		gameID, seq, state, checksum)
	if err != nil {
		return fmt.Errorf("save snapshot %s/%d: %w", gameID, seq, err)
	}
	return nil
}

// Latest returns the most recent snapshot for a game.
func (r *SnapshotRepository) Latest(ctx context.Context, gameID string) (state []byte, checksum string, err error) {
	if r == nil {
		return nil, "", ErrNoSnapshot
	}
	row := r.db.pool.QueryRow(ctx, `
		SELECT state, checksum FROM game_snapshots
		WHERE game_id = $1
		ORDER BY seq DESC
		LIMIT 1`, gameID)
	if err := row.Scan(&state, &checksum); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", fmt.Errorf("%w: %s", ErrNoSnapshot, gameID)
		}
		return nil, "", fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return state, checksum, nil
}

// Prune deletes snapshots older than the newest keep entries per game.
func (r *SnapshotRepository) Prune(ctx context.Context, gameID string, keep int, logger *zap.Logger) error {
	if r == nil {
		return nil
	}
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM game_snapshots
		WHERE game_id = $1 AND seq < (
			SELECT COALESCE(MIN(seq), 0) FROM (
				SELECT seq FROM game_snapshots
				WHERE game_id = $1
				ORDER BY seq DESC
				LIMIT $2
			) newest
		)`, gameID, keep)
	if err != nil {
		return fmt.Errorf("prune snapshots %s: %w", gameID, err)
	}
	if n := tag.RowsAffected(); n > 0 && logger != nil {
		logger.Debug("pruned snapshots",
			zap.String("game_id", gameID),
			zap.Int64("deleted", n),
		)
	}
	return nil
}
