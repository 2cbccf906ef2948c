package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/chama-engine/internal/domain"
)

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (id, action, actor, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.Actor,
		[]byte(entry.Metadata),
		entry.CreatedAt,
	)

	return mapError(err)
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) All(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `SELECT key, value FROM settings`); err != nil {
		return nil, mapError(err)
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}
