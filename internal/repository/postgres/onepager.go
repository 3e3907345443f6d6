package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"onepager/internal/domain"
	"onepager/internal/domain/models/onepager"
	"onepager/internal/domain/repositories"
)

// PostgresOnePagerRepository implements the OnePagerRepository interface
type PostgresOnePagerRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	tm     repositories.TransactionManager
	logger *slog.Logger
}

// NewOnePagerRepository creates a new PostgresOnePagerRepository
func NewOnePagerRepository(config *RepositoryConfig) repositories.OnePagerRepository {
	return &PostgresOnePagerRepository{
		pool:   config.Pool,
		tables: config.Tables,
		tm:     NewTransactionManager(config.Pool, config.Logger),
		logger: config.Logger,
	}
}

// GetOrCreateForUser returns the user's document, inserting seed when the
// user has none. Concurrent first loads converge on one row.
func (r *PostgresOnePagerRepository) GetOrCreateForUser(ctx context.Context, userID string, seed *onepager.Record) (*onepager.Record, error) {
	var rec *onepager.Record

	err := r.tm.ExecTx(ctx, func(txCtx context.Context) error {
		fields, err := encodeFields(seed.Fields)
		if err != nil {
			return err
		}

		insert := fmt.Sprintf(`
			INSERT INTO %s (user_id, title, fields, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (user_id) DO NOTHING
		`, r.tables.OnePagers)

		executor := GetExecutor(txCtx, r.pool)
		tag, err := executor.Exec(txCtx, insert, userID, seed.Title, fields, time.Now())
		if err != nil {
			if IsPgUndefinedTableError(err) {
				return fmt.Errorf("insert one-pager: table %s missing, run with schema bootstrap enabled: %w", r.tables.OnePagers, err)
			}
			return fmt.Errorf("insert one-pager: %w", err)
		}
		if tag.RowsAffected() == 1 {
			r.logger.Info("one-pager created", "user_id", userID)
		}

		rec, err = r.getByUser(txCtx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *PostgresOnePagerRepository) getByUser(ctx context.Context, userID string) (*onepager.Record, error) {
	query := fmt.Sprintf(`
		SELECT id::text, user_id::text, title, fields, created_at, updated_at
		FROM %s
		WHERE user_id = $1
	`, r.tables.OnePagers)

	var (
		rec    onepager.Record
		fields []byte
	)
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Title,
		&fields,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("one-pager for user %s not found", userID)}
		}
		return nil, fmt.Errorf("get one-pager: %w", err)
	}

	rec.Fields, err = decodeFields(fields)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save overwrites the title and fields of the record.
func (r *PostgresOnePagerRepository) Save(ctx context.Context, rec *onepager.Record) error {
	fields, err := encodeFields(rec.Fields)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, fields = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`, r.tables.OnePagers)

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, rec.Title, fields, updatedAt, rec.ID, rec.UserID)
	if err != nil {
		return fmt.Errorf("save one-pager: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("one-pager %s not found", rec.ID)}
	}

	r.logger.Debug("one-pager saved", "id", rec.ID, "user_id", rec.UserID, "fields", len(rec.Fields))
	return nil
}

// encodeFields marshals blocks for the JSONB column. A nil slice is stored
// as an empty array.
func encodeFields(fields []onepager.FieldRecord) ([]byte, error) {
	if fields == nil {
		fields = []onepager.FieldRecord{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return data, nil
}

// decodeFields reads the JSONB column. Legacy string content decodes to a
// one-paragraph tree.
func decodeFields(data []byte) ([]onepager.FieldRecord, error) {
	if len(data) == 0 {
		return []onepager.FieldRecord{}, nil
	}
	var fields []onepager.FieldRecord
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return fields, nil
}
