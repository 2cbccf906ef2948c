package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/pkg/response"
)

// LedgerHandler accepts contributions, income and expenses.
type LedgerHandler struct {
	service   LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(service LedgerService, v *validator.Validate) *LedgerHandler {
	return &LedgerHandler{service: service, validator: v}
}

func (h *LedgerHandler) RecordContribution(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordContributionRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	contribution, err := h.service.RecordContribution(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, contribution)
}

func (h *LedgerHandler) RecordIncome(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordIncomeRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	income, err := h.service.RecordIncome(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, income)
}

func (h *LedgerHandler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordExpenseRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	expense, err := h.service.RecordExpense(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, expense)
}
