package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/response"
)

type OperationHandler struct {
	schedules  ScheduleService
	operations OperationService
	validator  *validator.Validate
}

func NewOperationHandler(schedules ScheduleService, operations OperationService) *OperationHandler {
	return &OperationHandler{
		schedules:  schedules,
		operations: operations,
		validator:  newValidator(),
	}
}

// ComputeInterest handles POST /api/v1/operacoes/calcular-juros
func (h *OperationHandler) ComputeInterest(w http.ResponseWriter, r *http.Request) {
	var req domain.ComputeScheduleRequest
	if err := decode(r, h.validator, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.schedules.Preview(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, result)
}

// Create handles POST /api/v1/operacoes
func (h *OperationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOperationRequest
	if err := decode(r, h.validator, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	operation, duplicatas, err := h.operations.Create(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, domain.CreateOperationResponse{
		Operation:  operation,
		Duplicatas: duplicatas,
	})
}

// Approve handles POST /api/v1/operacoes/{id}/aprovar
func (h *OperationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req domain.ApproveOperationRequest
	if err := decode(r, h.validator, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.operations.Approve(r.Context(), id, &req); err != nil {
		writeError(w, r, err)
		return
	}

	response.SuccessMessage(w, "Operação aprovada com sucesso.")
}

// Reject handles POST /api/v1/operacoes/{id}/rejeitar
func (h *OperationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.operations.Reject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	response.SuccessMessage(w, "Operação rejeitada.")
}

// Cancel handles DELETE /api/v1/operacoes/{id}
func (h *OperationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.operations.Cancel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}
