package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/response"
)

type SettlementHandler struct {
	service   SettlementService
	validator *validator.Validate
}

func NewSettlementHandler(service SettlementService) *SettlementHandler {
	return &SettlementHandler{
		service:   service,
		validator: newValidator(),
	}
}

// Settle handles POST /api/v1/duplicatas/{id}/liquidar
func (h *SettlementHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req domain.SettleRequest
	if err := decode(r, h.validator, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	req.DuplicataID = id

	duplicata, err := h.service.SettleOne(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, duplicata)
}

// SettleBulk handles POST /api/v1/duplicatas/liquidar-em-massa
func (h *SettlementHandler) SettleBulk(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkSettleRequest
	if err := decode(r, h.validator, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.SettleBulk(r.Context(), &req); err != nil {
		writeError(w, r, err)
		return
	}

	response.SuccessMessage(w, "Duplicatas liquidadas com sucesso.")
}

// Buyback handles POST /api/v1/duplicatas/{id}/liquidar-recompra
func (h *SettlementHandler) Buyback(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req domain.BuybackRequest
	if err := decode(r, h.validator, &req, true); err != nil {
		writeError(w, r, err)
		return
	}

	duplicata, err := h.service.SettleBuyback(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, duplicata)
}

// Reverse handles POST /api/v1/duplicatas/{id}/estornar
func (h *SettlementHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	duplicata, err := h.service.Reverse(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, duplicata)
}
