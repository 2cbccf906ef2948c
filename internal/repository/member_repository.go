package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/chama-engine/internal/domain"
)

const memberColumns = `id, member_number, name, email, phone, role, status, joined_at, created_at, updated_at`

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO users (id, member_number, name, email, phone, role, status, joined_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		member.ID,
		member.MemberNumber,
		member.Name,
		member.Email,
		member.Phone,
		member.Role,
		member.Status,
		member.JoinedAt,
		member.CreatedAt,
		member.UpdatedAt,
	)

	return mapError(err)
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM users WHERE id = $1`

	var member domain.Member
	if err := conn(ctx, r.db).GetContext(ctx, &member, query, id); err != nil {
		return nil, mapError(err)
	}

	return &member, nil
}

func (r *memberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM users ORDER BY member_number`

	var members []*domain.Member
	if err := conn(ctx, r.db).SelectContext(ctx, &members, query); err != nil {
		return nil, mapError(err)
	}

	return members, nil
}

func (r *memberRepository) GetActiveChairperson(ctx context.Context) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM users WHERE role = $1 AND status = $2 LIMIT 1`

	var member domain.Member
	err := conn(ctx, r.db).GetContext(ctx, &member, query, domain.MemberRoleChairperson, domain.MemberStatusActive)
	if err != nil {
		return nil, mapError(err)
	}

	return &member, nil
}

func (r *memberRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string, updatedAt time.Time) error {
	query := `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, role, updatedAt)
	if err != nil {
		return mapError(err)
	}

	return requireAffected(result)
}
