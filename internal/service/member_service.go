package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/repository"
	customError "github.com/segyhp/chama-engine/pkg/errors"
	"github.com/segyhp/chama-engine/pkg/utils"
)

type MemberService struct {
	members repository.MemberRepository
	audit   *auditor
	logger  *slog.Logger
	now     func() time.Time
}

func NewMemberService(repos *repository.Repositories, logger *slog.Logger) *MemberService {
	return &MemberService{
		members: repos.Members,
		audit:   &auditor{repo: repos.Audit, logger: logger, now: time.Now},
		logger:  logger,
		now:     time.Now,
	}
}

// Register adds an active member. Only one active chairperson may exist.
func (s *MemberService) Register(ctx context.Context, req *domain.RegisterMemberRequest) (*domain.Member, error) {
	role := req.Role
	if role == "" {
		role = domain.MemberRoleMember
	}

	now := s.now().UTC()
	joinedAt := utils.StartOfDay(now)
	if req.JoinedAt != "" {
		parsed, err := utils.ParseDate(req.JoinedAt)
		if err != nil {
			return nil, customError.WrapValidation(fmt.Sprintf("invalid joined_at %q", req.JoinedAt))
		}
		joinedAt = parsed
	}

	if role == domain.MemberRoleChairperson {
		if err := s.ensureNoChairperson(ctx, uuid.Nil); err != nil {
			return nil, err
		}
	}

	member := &domain.Member{
		ID:           uuid.New(),
		MemberNumber: strings.TrimSpace(req.MemberNumber),
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		Status:       domain.MemberStatusActive,
		JoinedAt:     joinedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if strings.Contains(err.Error(), "chairperson") {
				return nil, customError.WrapChairpersonExists()
			}
			return nil, customError.WrapMemberAlreadyExists(member.MemberNumber)
		}
		return nil, customError.WrapDatabaseError("create member", err)
	}

	s.logger.InfoContext(ctx, "Member registered",
		slog.String("member_id", member.ID.String()),
		slog.String("member_number", member.MemberNumber),
		slog.String("role", member.Role),
	)

	return member, nil
}

func (s *MemberService) List(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError("list members", err)
	}
	return members, nil
}

// ChangeRole updates a member's role, keeping at most one active chairperson.
func (s *MemberService) ChangeRole(ctx context.Context, memberID uuid.UUID, req *domain.ChangeRoleRequest) (*domain.Member, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapMemberNotFound(memberID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError("get member", err)
	}

	if member.Role == req.Role {
		return member, nil
	}

	if req.Role == domain.MemberRoleChairperson && member.IsActive() {
		if err := s.ensureNoChairperson(ctx, member.ID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	if err := s.members.UpdateRole(ctx, member.ID, req.Role, now); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, customError.WrapChairpersonExists()
		}
		return nil, customError.WrapDatabaseError("update member role", err)
	}

	from := member.Role
	member.Role = req.Role
	member.UpdatedAt = now

	s.audit.record(ctx, domain.AuditActionMemberRoleChanged, req.Actor, map[string]interface{}{
		"member_id": member.ID,
		"from":      from,
		"to":        member.Role,
	})

	return member, nil
}

// ensureNoChairperson fails when an active chairperson other than except exists.
func (s *MemberService) ensureNoChairperson(ctx context.Context, except uuid.UUID) error {
	chair, err := s.members.GetActiveChairperson(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return customError.WrapDatabaseError("get active chairperson", err)
	}
	if chair.ID != except {
		return customError.WrapChairpersonExists()
	}
	return nil
}
