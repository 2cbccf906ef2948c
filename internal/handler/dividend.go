package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/chama-engine/internal/domain"
	customError "github.com/segyhp/chama-engine/pkg/errors"
	"github.com/segyhp/chama-engine/pkg/response"
)

type DividendHandler struct {
	service   DividendService
	validator *validator.Validate
}

func NewDividendHandler(service DividendService, v *validator.Validate) *DividendHandler {
	return &DividendHandler{
		service:   service,
		validator: v,
	}
}

// GetPool handles GET /dividends/pool?fiscal_year=
func (h *DividendHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("fiscal_year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		response.CodedError(w, http.StatusBadRequest, customError.ErrCodeValidation, fmt.Sprintf("Invalid fiscal_year %q", raw), nil)
		return
	}

	pool, err := h.service.ComputePool(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, pool)
}

func (h *DividendHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req domain.CalculateDividendsRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.service.Calculate(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, result)
}

func (h *DividendHandler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	calcs, err := h.service.ListCalculations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, calcs)
}

func (h *DividendHandler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "calculationId")
	if !ok {
		return
	}

	result, err := h.service.GetCalculation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, result)
}

func (h *DividendHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "calculationId")
	if !ok {
		return
	}

	var req domain.TransitionCalculationRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	calc, err := h.service.Transition(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, calc)
}

func (h *DividendHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "calculationId")
	if !ok {
		return
	}

	var req domain.DistributeDividendsRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.service.Distribute(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, result)
}
