package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/chama-engine/internal/domain"
	customError "github.com/segyhp/chama-engine/pkg/errors"
	"github.com/segyhp/chama-engine/pkg/response"
	"github.com/segyhp/chama-engine/pkg/utils"
)

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
}

func NewLoanHandler(service LoanService, v *validator.Validate) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: v,
	}
}

func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, loan)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	details, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, details)
}

// GetSchedule handles GET /loans/{loanId}/schedule with an optional as_of date.
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			response.CodedError(w, http.StatusBadRequest, customError.ErrCodeValidation, fmt.Sprintf("Invalid as_of %q", raw), nil)
			return
		}
		asOf = parsed
	}

	schedule, err := h.service.GetSchedule(r.Context(), id, asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, schedule)
}

// GetStatement returns the statement as JSON, or as a text table with ?format=text.
func (h *LoanHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	statement, err := h.service.GenerateStatement(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "text" {
		response.Success(w, statement)
		return
	}

	var buf bytes.Buffer
	if err := statement.WriteText(&buf); err != nil {
		response.InternalServerError(w, "Failed to render statement", err)
		return
	}
	response.Text(w, http.StatusOK, buf.Bytes())
}

func (h *LoanHandler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	var req domain.RecordRepaymentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.service.RecordRepayment(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, result)
}

func (h *LoanHandler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.service.RefreshStatus(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, loan)
}
