package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/internal/repository"
	customError "github.com/segyhp/chama-engine/pkg/errors"
)

// SettingsProvider builds the engine settings for one operation: configuration
// defaults overlaid with rows of the settings table.
type SettingsProvider struct {
	repo     repository.SettingsRepository
	defaults domain.EngineSettings
	logger   *slog.Logger
}

func NewSettingsProvider(repo repository.SettingsRepository, defaults domain.EngineSettings, logger *slog.Logger) *SettingsProvider {
	return &SettingsProvider{repo: repo, defaults: defaults, logger: logger}
}

func (p *SettingsProvider) Load(ctx context.Context) (domain.EngineSettings, error) {
	settings := p.defaults

	overrides, err := p.repo.All(ctx)
	if err != nil {
		return settings, customError.WrapDatabaseError("load settings", err)
	}

	for key, value := range overrides {
		if err := apply(&settings, key, value); err != nil {
			// Keep the default.
			p.logger.WarnContext(ctx, "Ignoring invalid setting",
				slog.String("key", key),
				slog.String("value", value),
				slog.String("error", err.Error()),
			)
		}
	}

	return settings, nil
}

func apply(s *domain.EngineSettings, key, value string) error {
	switch key {
	case domain.SettingDefaultMonthlyRate:
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return err
		}
		if rate.IsNegative() {
			return strconv.ErrRange
		}
		s.DefaultMonthlyRate = rate
	case domain.SettingDefaultTermMonths:
		months, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if months <= 0 {
			return strconv.ErrRange
		}
		s.DefaultTermMonths = months
	case domain.SettingRepaidEpsilon:
		epsilon, err := decimal.NewFromString(value)
		if err != nil {
			return err
		}
		if epsilon.IsNegative() {
			return strconv.ErrRange
		}
		s.RepaidEpsilon = epsilon
	case domain.SettingAllocationMethod:
		switch value {
		case domain.AllocationMethodProportional, domain.AllocationMethodLargestRemainder:
			s.AllocationMethod = value
		default:
			return strconv.ErrSyntax
		}
	case domain.SettingMinFiscalYear:
		year, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		s.MinFiscalYear = year
	}
	// Unknown keys belong to other features.
	return nil
}
