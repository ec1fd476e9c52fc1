package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/handler"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/mocks"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

const testSecret = "test-secret"

type testServer struct {
	router         http.Handler
	db             *mocks.MockDBPinger
	redis          *mocks.MockRedisClient
	schedules      *mocks.MockScheduleService
	operations     *mocks.MockOperationService
	settlements    *mocks.MockSettlementService
	reconciliation *mocks.MockReconciliationService
	ledger         *mocks.MockLedgerService
	dashboard      *mocks.MockDashboardService
}

func newTestServer() *testServer {
	s := &testServer{
		db:             &mocks.MockDBPinger{},
		redis:          &mocks.MockRedisClient{},
		schedules:      &mocks.MockScheduleService{},
		operations:     &mocks.MockOperationService{},
		settlements:    &mocks.MockSettlementService{},
		reconciliation: &mocks.MockReconciliationService{},
		ledger:         &mocks.MockLedgerService{},
		dashboard:      &mocks.MockDashboardService{},
	}

	s.router = handler.NewRouter(handler.Handlers{
		Health:         handler.NewHealthHandler(s.db, s.redis, time.Second),
		Operation:      handler.NewOperationHandler(s.schedules, s.operations),
		Settlement:     handler.NewSettlementHandler(s.settlements),
		Reconciliation: handler.NewReconciliationHandler(s.reconciliation),
		Ledger:         handler.NewLedgerHandler(s.ledger, s.dashboard),
		Auth:           handler.NewAuthenticator(testSecret),
	})
	return s
}

func signToken(t *testing.T, secret string, admin bool, expiresIn time.Duration) string {
	t.Helper()
	claims := handler.Claims{
		UserID:  7,
		IsAdmin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func userToken(t *testing.T) string {
	return signToken(t, testSecret, false, time.Hour)
}

func adminToken(t *testing.T) string {
	return signToken(t, testSecret, true, time.Hour)
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	t.Run("liveness needs no token", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodGet, "/health", "", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("ready with redis down is degraded", func(t *testing.T) {
		s := newTestServer()
		s.db.On("PingContext", mock.Anything).Return(nil)
		s.redis.On("Ping", mock.Anything).Return(errors.New("connection refused"))

		w := s.do(http.MethodGet, "/health/ready", "", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var status handler.HealthStatus
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &status))
		assert.Equal(t, "ok", status.Checks["database"])
		assert.Contains(t, status.Checks["redis"], "degraded")
	})

	t.Run("ready with database down", func(t *testing.T) {
		s := newTestServer()
		s.db.On("PingContext", mock.Anything).Return(errors.New("no route to host"))
		s.redis.On("Ping", mock.Anything).Return(nil)

		w := s.do(http.MethodGet, "/health/ready", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestAuthentication(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token"},
		{name: "wrong secret", token: signToken(t, "other-secret", true, time.Hour)},
		{name: "expired", token: signToken(t, testSecret, true, -time.Minute)},
		{name: "garbage", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			w := s.do(http.MethodGet, "/api/v1/dashboard/vencidos", "", tt.token)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			s.dashboard.AssertNotCalled(t, "Overdue", mock.Anything)
		})
	}
}

func TestComputeInterest(t *testing.T) {
	body := `{
		"dataOperacao": "2024-01-10",
		"tipoOperacaoId": 1,
		"valorNf": 9000,
		"parcelas": 3,
		"prazos": "30/60/90",
		"dataNf": "2024-01-05"
	}`

	t.Run("returns schedule", func(t *testing.T) {
		s := newTestServer()
		s.schedules.On("Preview", mock.Anything, mock.MatchedBy(func(req *domain.ComputeScheduleRequest) bool {
			return req.OperationTypeID == 1 &&
				req.NoteValue.Equal(decimal.NewFromInt(9000)) &&
				req.Offsets == "30/60/90" &&
				req.OperationDate == utils.MustParseDate("2024-01-10")
		})).Return(&domain.ComputeScheduleResponse{
			TotalInterest: decimal.NewFromInt(540),
			NetValue:      decimal.NewFromInt(8460),
			Installments: []domain.ScheduleInstallmentResponse{
				{Number: 1, DueDate: utils.MustParseDate("2024-02-04"), FaceValue: decimal.NewFromInt(3000), InterestPart: decimal.NewFromInt(90)},
			},
		}, nil)

		w := s.do(http.MethodPost, "/api/v1/operacoes/calcular-juros", body, userToken(t))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var data map[string]interface{}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
		assert.Equal(t, "540", data["totalJuros"])
		assert.Equal(t, "8460", data["valorLiquido"])

		installments := data["parcelasCalculadas"].([]interface{})
		first := installments[0].(map[string]interface{})
		assert.Equal(t, "2024-02-04", first["dataVencimento"])
		assert.Equal(t, "90", first["jurosParcela"])
	})

	t.Run("money as numbers", func(t *testing.T) {
		decimal.MarshalJSONWithoutQuotes = true
		t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = false })

		s := newTestServer()
		s.schedules.On("Preview", mock.Anything, mock.Anything).Return(&domain.ComputeScheduleResponse{
			TotalInterest: decimal.RequireFromString("600.00"),
			NetValue:      decimal.RequireFromString("9400.00"),
			Installments: []domain.ScheduleInstallmentResponse{
				{Number: 1, DueDate: utils.MustParseDate("2024-02-04"), FaceValue: decimal.RequireFromString("3333.33"), InterestPart: decimal.RequireFromString("100.00")},
			},
		}, nil)

		w := s.do(http.MethodPost, "/api/v1/operacoes/calcular-juros", body, userToken(t))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{
			"totalJuros": 600,
			"valorLiquido": 9400,
			"parcelasCalculadas": [{"numeroParcela": 1, "dataVencimento": "2024-02-04", "valorParcela": 3333.33, "jurosParcela": 100}]
		}`, string(decodeEnvelope(t, w).Data))
	})

	t.Run("missing operation date is rejected", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodPost, "/api/v1/operacoes/calcular-juros",
			`{"tipoOperacaoId": 1, "valorNf": 9000, "prazos": "30", "dataNf": "2024-01-05"}`, userToken(t))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, customError.ErrCodeValidation, decodeEnvelope(t, w).Code)
		s.schedules.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything)
	})

	t.Run("zero note value is rejected", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodPost, "/api/v1/operacoes/calcular-juros",
			`{"dataOperacao": "2024-01-10", "tipoOperacaoId": 1, "valorNf": 0, "prazos": "30", "dataNf": "2024-01-05"}`, userToken(t))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown operation type", func(t *testing.T) {
		s := newTestServer()
		s.schedules.On("Preview", mock.Anything, mock.Anything).Return(nil, customError.WrapOperationTypeNotFound(1))

		w := s.do(http.MethodPost, "/api/v1/operacoes/calcular-juros", body, userToken(t))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, customError.ErrCodeConfiguration, decodeEnvelope(t, w).Code)
	})
}

func TestOperationRoutes(t *testing.T) {
	t.Run("approve needs admin", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodPost, "/api/v1/operacoes/42/aprovar", `{"contaBancariaId": 2}`, userToken(t))

		assert.Equal(t, http.StatusForbidden, w.Code)
		s.operations.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin approves", func(t *testing.T) {
		s := newTestServer()
		s.operations.On("Approve", mock.Anything, int64(42), &domain.ApproveOperationRequest{BankAccountID: 2}).Return(nil)

		w := s.do(http.MethodPost, "/api/v1/operacoes/42/aprovar", `{"contaBancariaId": 2}`, adminToken(t))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		s.operations.AssertExpectations(t)
	})

	t.Run("approve already approved", func(t *testing.T) {
		s := newTestServer()
		s.operations.On("Approve", mock.Anything, int64(42), mock.Anything).
			Return(customError.WrapStateConflict("operation 42 is Aprovada"))

		w := s.do(http.MethodPost, "/api/v1/operacoes/42/aprovar", `{"contaBancariaId": 2}`, adminToken(t))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "operation 42 is Aprovada", decodeEnvelope(t, w).Message)
	})

	t.Run("create", func(t *testing.T) {
		s := newTestServer()
		s.operations.On("Create", mock.Anything, mock.MatchedBy(func(req *domain.CreateOperationRequest) bool {
			return req.ClientID == 5 && len(req.Notes) == 1 && req.Notes[0].DocumentNumber == "NF100"
		})).Return(&domain.Operation{ID: 42, Status: domain.OperationStatusPending}, []*domain.Duplicata{{ID: 1, DocumentNumber: "NF100.1"}}, nil)

		body := `{
			"dataOperacao": "2024-01-05", "tipoOperacaoId": 1, "clienteId": 5,
			"notasFiscais": [{"nfCte": "NF100", "sacadoId": 3, "dataNf": "2024-01-05", "valorNf": "1000.00", "prazos": "30"}]
		}`
		w := s.do(http.MethodPost, "/api/v1/operacoes", body, userToken(t))
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("create without notes", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodPost, "/api/v1/operacoes", `{"dataOperacao": "2024-01-05", "tipoOperacaoId": 1, "clienteId": 5, "notasFiscais": []}`, userToken(t))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		s := newTestServer()
		s.operations.On("Cancel", mock.Anything, int64(42)).Return(nil)

		w := s.do(http.MethodDelete, "/api/v1/operacoes/42", "", userToken(t))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestSettlementRoutes(t *testing.T) {
	t.Run("settle takes id from path and accepts empty body", func(t *testing.T) {
		s := newTestServer()
		s.settlements.On("SettleOne", mock.Anything, mock.MatchedBy(func(req *domain.SettleRequest) bool {
			return req.DuplicataID == 9 && req.SettlementDate == nil && req.BankAccountID == nil
		})).Return(&domain.Duplicata{ID: 9, Status: domain.DuplicataStatusReceived}, nil)

		w := s.do(http.MethodPost, "/api/v1/duplicatas/9/liquidar", "", userToken(t))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		s.settlements.AssertExpectations(t)
	})

	t.Run("settle with account and adjustments", func(t *testing.T) {
		s := newTestServer()
		s.settlements.On("SettleOne", mock.Anything, mock.MatchedBy(func(req *domain.SettleRequest) bool {
			return req.DuplicataID == 9 &&
				*req.BankAccountID == 2 &&
				*req.SettlementDate == utils.MustParseDate("2024-05-18") &&
				req.LateInterest.Equal(decimal.RequireFromString("12.5"))
		})).Return(&domain.Duplicata{ID: 9}, nil)

		w := s.do(http.MethodPost, "/api/v1/duplicatas/9/liquidar",
			`{"dataLiquidacao": "2024-05-18", "jurosMora": 12.5, "contaBancariaId": 2}`, userToken(t))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("negative mora", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodPost, "/api/v1/duplicatas/9/liquidar", `{"jurosMora": -1}`, userToken(t))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		s.settlements.AssertNotCalled(t, "SettleOne", mock.Anything, mock.Anything)
	})

	t.Run("bulk partial failure", func(t *testing.T) {
		s := newTestServer()
		s.settlements.On("SettleBulk", mock.Anything, mock.Anything).Return(&customError.PartialFailureError{
			Settled:  []int64{1},
			FailedID: 2,
			Err:      customError.WrapDatabaseError(errors.New("connection reset")),
		})

		w := s.do(http.MethodPost, "/api/v1/duplicatas/liquidar-em-massa", `{"liquidacoes": [{"id": 1}, {"id": 2}, {"id": 3}]}`, userToken(t))
		assert.Equal(t, http.StatusConflict, w.Code)

		body := decodeEnvelope(t, w)
		assert.Equal(t, customError.ErrCodePartialFailure, body.Code)
		assert.Contains(t, body.Message, "do not retry")
		assert.JSONEq(t, `{"liquidadas": [1], "falhou": 2}`, string(body.Details))
	})

	t.Run("bulk nothing applied", func(t *testing.T) {
		s := newTestServer()
		s.settlements.On("SettleBulk", mock.Anything, mock.Anything).Return(customError.WrapDatabaseError(errors.New("connection reset")))

		w := s.do(http.MethodPost, "/api/v1/duplicatas/liquidar-em-massa", `{"liquidacoes": [{"id": 1}]}`, userToken(t))
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		body := decodeEnvelope(t, w)
		assert.Equal(t, customError.ErrCodeDatabaseError, body.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})

	t.Run("reverse missing duplicata", func(t *testing.T) {
		s := newTestServer()
		s.settlements.On("Reverse", mock.Anything, int64(404)).Return(nil, customError.WrapNotFound("duplicata", int64(404)))

		w := s.do(http.MethodPost, "/api/v1/duplicatas/404/estornar", "", userToken(t))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("buyback", func(t *testing.T) {
		s := newTestServer()
		s.settlements.On("SettleBuyback", mock.Anything, int64(9), mock.Anything).Return(&domain.Duplicata{ID: 9}, nil)

		w := s.do(http.MethodPost, "/api/v1/duplicatas/9/liquidar-recompra", `{"dataLiquidacao": "2024-05-10"}`, userToken(t))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestReconciliationRoutes(t *testing.T) {
	body := `{
		"duplicataIds": [1, 2],
		"detalhesTransacao": {"id": "TX-991", "data": "2024-06-03", "valor": 1515},
		"contaBancaria": "Itaú - 0001/12345-6",
		"juros": 20,
		"descontos": 5
	}`

	t.Run("reconciles", func(t *testing.T) {
		s := newTestServer()
		s.reconciliation.On("ReconcilePayment", mock.Anything, mock.MatchedBy(func(req *domain.ReconcileRequest) bool {
			return req.Transaction.ID == "TX-991" && req.Transaction.Amount.Equal(decimal.NewFromInt(1515)) && len(req.DuplicataIDs) == 2
		})).Return(&domain.ReconcileResponse{Message: "2 duplicata(s) conciliada(s) com sucesso."}, nil)

		w := s.do(http.MethodPost, "/api/v1/conciliacao/pagamento", body, userToken(t))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "2 duplicata(s) conciliada(s) com sucesso.", decodeEnvelope(t, w).Message)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		s := newTestServer()
		s.reconciliation.On("ReconcilePayment", mock.Anything, mock.Anything).Return(nil, customError.WrapReconciliationMismatch("1515.00", "1500.00"))

		w := s.do(http.MethodPost, "/api/v1/conciliacao/pagamento", body, userToken(t))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, customError.ErrCodeReconciliationMismatch, decodeEnvelope(t, w).Code)
	})

	t.Run("replayed transaction", func(t *testing.T) {
		s := newTestServer()
		s.reconciliation.On("ReconcilePayment", mock.Anything, mock.Anything).Return(nil, customError.WrapDuplicateTransaction("TX-991#1"))

		w := s.do(http.MethodPost, "/api/v1/conciliacao/pagamento", body, userToken(t))
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing transaction id", func(t *testing.T) {
		s := newTestServer()
		w := s.do(http.MethodPost, "/api/v1/conciliacao/pagamento",
			`{"duplicataIds": [1], "detalhesTransacao": {"data": "2024-06-03", "valor": 10}, "contaBancaria": "x"}`, userToken(t))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		s.reconciliation.AssertNotCalled(t, "ReconcilePayment", mock.Anything, mock.Anything)
	})

	t.Run("candidates", func(t *testing.T) {
		s := newTestServer()
		s.reconciliation.On("MatchCandidates", mock.Anything, "alfa").Return([]*domain.Duplicata{{ID: 1}}, nil)

		w := s.do(http.MethodGet, "/api/v1/conciliacao/candidatos?q=alfa", "", userToken(t))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLedgerRoutes(t *testing.T) {
	t.Run("record movement", func(t *testing.T) {
		s := newTestServer()
		s.ledger.On("Record", mock.Anything, mock.Anything).Return(&domain.CashMovement{ID: 77}, nil)

		w := s.do(http.MethodPost, "/api/v1/movimentacoes-caixa",
			`{"data": "2024-07-01", "descricao": "Tarifa", "valor": -12.35, "contaBancariaId": 2, "transactionId": "EXT-1"}`, userToken(t))
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("overdue dashboard", func(t *testing.T) {
		s := newTestServer()
		s.dashboard.On("Overdue", mock.Anything).Return(&domain.OverdueSummary{
			ReferenceDate: utils.MustParseDate("2024-05-20"),
			Count:         4,
			Total:         decimal.RequireFromString("1500.50"),
		}, nil)

		w := s.do(http.MethodGet, "/api/v1/dashboard/vencidos", "", userToken(t))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"dataReferencia": "2024-05-20", "quantidade": 4, "valorTotal": "1500.5"}`, string(decodeEnvelope(t, w).Data))
	})
}
