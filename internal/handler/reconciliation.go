package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/response"
)

type ReconciliationHandler struct {
	service   ReconciliationService
	validator *validator.Validate
}

func NewReconciliationHandler(service ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		service:   service,
		validator: newValidator(),
	}
}

// Candidates handles GET /api/v1/conciliacao/candidatos?q=
func (h *ReconciliationHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	duplicatas, err := h.service.MatchCandidates(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, duplicatas)
}

// ReconcilePayment handles POST /api/v1/conciliacao/pagamento
func (h *ReconciliationHandler) ReconcilePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.ReconcileRequest
	if err := decode(r, h.validator, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.service.ReconcilePayment(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.SuccessMessage(w, result.Message)
}
