package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/chama-engine/internal/domain"
	"github.com/segyhp/chama-engine/pkg/response"
)

type MemberHandler struct {
	service   MemberService
	validator *validator.Validate
}

func NewMemberHandler(service MemberService, v *validator.Validate) *MemberHandler {
	return &MemberHandler{service: service, validator: v}
}

func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterMemberRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	member, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, members)
}

func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "memberId")
	if !ok {
		return
	}

	var req domain.ChangeRoleRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	member, err := h.service.ChangeRole(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, member)
}
