package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health         *HealthHandler
	Operation      *OperationHandler
	Settlement     *SettlementHandler
	Reconciliation *ReconciliationHandler
	Ledger         *LedgerHandler
	Auth           *Authenticator
}

// NewRouter wires the routes. Health checks are public; everything under
// /api/v1 needs a bearer token, and operation approval needs the admin claim.
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogger)

	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(h.Auth.Middleware)

	api.HandleFunc("/operacoes/calcular-juros", h.Operation.ComputeInterest).Methods(http.MethodPost)
	api.HandleFunc("/operacoes", h.Operation.Create).Methods(http.MethodPost)
	api.Handle("/operacoes/{id:[0-9]+}/aprovar", RequireAdmin(http.HandlerFunc(h.Operation.Approve))).Methods(http.MethodPost)
	api.Handle("/operacoes/{id:[0-9]+}/rejeitar", RequireAdmin(http.HandlerFunc(h.Operation.Reject))).Methods(http.MethodPost)
	api.HandleFunc("/operacoes/{id:[0-9]+}", h.Operation.Cancel).Methods(http.MethodDelete)

	api.HandleFunc("/duplicatas/liquidar-em-massa", h.Settlement.SettleBulk).Methods(http.MethodPost)
	api.HandleFunc("/duplicatas/{id:[0-9]+}/liquidar", h.Settlement.Settle).Methods(http.MethodPost)
	api.HandleFunc("/duplicatas/{id:[0-9]+}/liquidar-recompra", h.Settlement.Buyback).Methods(http.MethodPost)
	api.HandleFunc("/duplicatas/{id:[0-9]+}/estornar", h.Settlement.Reverse).Methods(http.MethodPost)

	api.HandleFunc("/conciliacao/candidatos", h.Reconciliation.Candidates).Methods(http.MethodGet)
	api.HandleFunc("/conciliacao/pagamento", h.Reconciliation.ReconcilePayment).Methods(http.MethodPost)

	api.HandleFunc("/movimentacoes-caixa", h.Ledger.RecordMovement).Methods(http.MethodPost)
	api.HandleFunc("/dashboard/vencidos", h.Ledger.Overdue).Methods(http.MethodGet)

	return router
}
