package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/repository"
)

// auditor appends audit entries after a committed change. Failures are logged
// at warn and never returned.
type auditor struct {
	repo   repository.AuditRepository
	logger *slog.Logger
	now    func() time.Time
}

func (a *auditor) record(ctx context.Context, action, actor string, metadata map[string]interface{}) {
	raw, err := json.Marshal(metadata)
	if err != nil {
		a.logger.WarnContext(ctx, "Failed to encode audit metadata",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return
	}

	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		Action:    action,
		Actor:     actor,
		Metadata:  raw,
		CreatedAt: a.now().UTC(),
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.logger.WarnContext(ctx, "Failed to write audit entry",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
