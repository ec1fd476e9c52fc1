package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/response"
)

type LedgerHandler struct {
	ledger    LedgerService
	dashboard DashboardService
	validator *validator.Validate
}

func NewLedgerHandler(ledger LedgerService, dashboard DashboardService) *LedgerHandler {
	return &LedgerHandler{
		ledger:    ledger,
		dashboard: dashboard,
		validator: newValidator(),
	}
}

// RecordMovement handles POST /api/v1/movimentacoes-caixa
func (h *LedgerHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req domain.ManualMovementRequest
	if err := decode(r, h.validator, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	movement, err := h.ledger.Record(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, movement)
}

// Overdue handles GET /api/v1/dashboard/vencidos
func (h *LedgerHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Overdue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, summary)
}
