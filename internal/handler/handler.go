package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/domain"
	customError "github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/errors"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/response"
	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/pkg/utils"
)

// Services the handlers depend on. The concrete implementations live in
// internal/service.

type ScheduleService interface {
	Preview(ctx context.Context, request *domain.ComputeScheduleRequest) (*domain.ComputeScheduleResponse, error)
}

type OperationService interface {
	Create(ctx context.Context, request *domain.CreateOperationRequest) (*domain.Operation, []*domain.Duplicata, error)
	Approve(ctx context.Context, id int64, request *domain.ApproveOperationRequest) error
	Reject(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64) error
}

type SettlementService interface {
	SettleOne(ctx context.Context, request *domain.SettleRequest) (*domain.Duplicata, error)
	SettleBulk(ctx context.Context, request *domain.BulkSettleRequest) error
	SettleBuyback(ctx context.Context, id int64, request *domain.BuybackRequest) (*domain.Duplicata, error)
	Reverse(ctx context.Context, id int64) (*domain.Duplicata, error)
}

type ReconciliationService interface {
	MatchCandidates(ctx context.Context, query string) ([]*domain.Duplicata, error)
	ReconcilePayment(ctx context.Context, request *domain.ReconcileRequest) (*domain.ReconcileResponse, error)
}

type LedgerService interface {
	Record(ctx context.Context, request *domain.ManualMovementRequest) (*domain.CashMovement, error)
}

type DashboardService interface {
	Overdue(ctx context.Context) (*domain.OverdueSummary, error)
}

// newValidator teaches the validator to read decimals as numbers and dates
// as strings, so numeric and required tags work on those fields.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(utils.Date); ok {
			if d.IsZero() {
				return ""
			}
			return d.String()
		}
		return nil
	}, utils.Date{})

	return v
}

// decode reads the JSON body into dst and validates it. An empty body is
// accepted for requests whose fields are all optional.
func decode(r *http.Request, v *validator.Validate, dst interface{}, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return customError.WrapValidation("invalid request body: %v", err)
		}
	}

	if err := v.Struct(dst); err != nil {
		return customError.WrapValidation("%v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, customError.WrapValidation("invalid id %q", raw)
	}
	return id, nil
}

// statusFor maps a service error to its HTTP status. Partial failures are
// checked first because they also wrap the cause of the stop.
func statusFor(err error) int {
	switch {
	case errors.Is(err, customError.ErrPartiallyApplied):
		return http.StatusConflict
	case errors.Is(err, customError.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, customError.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, customError.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, customError.ErrStateConflict), errors.Is(err, customError.ErrDuplicateTransaction):
		return http.StatusConflict
	case errors.Is(err, customError.ErrReconciliationMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type partialFailureDetails struct {
	Settled  []int64 `json:"liquidadas"`
	FailedID int64   `json:"falhou"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := customError.Code(err)
	message := err.Error()

	var be *customError.BusinessError
	if errors.As(err, &be) {
		message = be.Message
	}

	var details interface{}
	var partial *customError.PartialFailureError
	if errors.As(err, &partial) {
		code = customError.ErrCodePartialFailure
		message = partial.Error()
		details = partialFailureDetails{Settled: partial.Settled, FailedID: partial.FailedID}
	}

	log := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", code).Msg("Request failed")
		response.ErrorWithCode(w, status, code, "Internal server error", nil, details)
		return
	}

	log.Warn().Err(err).Str("code", code).Int("status", status).Msg("Request rejected")
	response.ErrorWithCode(w, status, code, message, err, details)
}
