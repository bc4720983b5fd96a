// internal/api/handler/cashcard.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"cashcard-api/internal/api/middleware"
	"cashcard-api/internal/api/types"
	"cashcard-api/internal/metrics"
	"cashcard-api/internal/paging"
	"cashcard-api/internal/service"
	"cashcard-api/internal/util"
)

// DefaultTimeout bounds how long a single request may run.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps request payloads.
const maxBodyBytes = 1 << 20

// CashCardHandler handles HTTP requests for the /cashcards resource.
type CashCardHandler struct {
	service      service.CashCardService
	logger       *slog.Logger
	pageDefaults paging.Defaults
}

// NewCashCardHandler creates a new CashCardHandler.
func NewCashCardHandler(svc service.CashCardService, logger *slog.Logger, pageDefaults paging.Defaults) *CashCardHandler {
	return &CashCardHandler{
		service:      svc,
		logger:       logger,
		pageDefaults: pageDefaults,
	}
}

// Helper function to send JSON responses.
func (h *CashCardHandler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors to status codes. Authentication,
// authorization and lookup failures carry no body so nothing about other
// users' cards leaks.
func (h *CashCardHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case util.IsError(err, util.ErrInvalidInput):
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	case util.IsError(err, util.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case util.IsError(err, util.ErrUnauthenticated):
		w.WriteHeader(http.StatusUnauthorized)
	case util.IsError(err, util.ErrForbidden):
		w.WriteHeader(http.StatusForbidden)
	case util.IsError(err, util.ErrDuplicateEntry):
		h.logger.Warn("Cash card id collision", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		h.respondWithJSON(w, http.StatusConflict, types.ErrorResponse{Error: "Conflict, retry the request"})
	default:
		h.logger.Error("Unhandled service error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.respondWithJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "Internal server error"})
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case util.IsError(err, util.ErrNotFound):
		return "not_found"
	case util.IsError(err, util.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

// CashCardRequest is the body of create and update requests. Any id or
// owner the client sends is ignored.
type CashCardRequest struct {
	Amount decimal.NullDecimal `json:"amount"`
}

func decodeAmount(r *http.Request) (decimal.Decimal, error) {
	var req CashCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed cash card payload: %w", util.ErrInvalidInput)
	}
	if !req.Amount.Valid {
		return decimal.Decimal{}, fmt.Errorf("amount is required: %w", util.ErrInvalidInput)
	}
	return req.Amount.Decimal, nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cash card id must be an integer: %w", util.ErrInvalidInput)
	}
	return id, nil
}

func caller(r *http.Request) string {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p.Username
}

// List returns one page of the caller's cards.
// GET /cashcards?page=&size=&sort=
func (h *CashCardHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := paging.Parse(r.URL.Query(), h.pageDefaults)
	if err != nil {
		metrics.RecordCardOperation("list", outcome(err))
		h.respondWithError(w, r, err)
		return
	}

	cards, err := h.service.ListCashCards(r.Context(), caller(r), page)
	metrics.RecordCardOperation("list", outcome(err))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.NewCashCardListResponse(cards))
}

// Get returns a single card owned by the caller.
// GET /cashcards/{id}
func (h *CashCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	card, err := h.service.GetCashCard(r.Context(), caller(r), id)
	metrics.RecordCardOperation("get", outcome(err))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.NewCashCardResponse(*card))
}

// Create stores a new card for the caller and points Location at it.
// POST /cashcards
func (h *CashCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	amount, err := decodeAmount(r)
	if err != nil {
		metrics.RecordCardOperation("create", outcome(err))
		h.respondWithError(w, r, err)
		return
	}

	card, err := h.service.CreateCashCard(r.Context(), caller(r), amount)
	metrics.RecordCardOperation("create", outcome(err))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.Info("Cash card created", "id", card.ID, "owner", card.Owner, "request_id", middleware.GetRequestID(r.Context()))
	w.Header().Set("Location", fmt.Sprintf("/cashcards/%d", card.ID))
	w.WriteHeader(http.StatusCreated)
}

// Update replaces the amount of a card owned by the caller.
// PUT /cashcards/{id}
func (h *CashCardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	amount, err := decodeAmount(r)
	if err != nil {
		metrics.RecordCardOperation("update", outcome(err))
		h.respondWithError(w, r, err)
		return
	}

	err = h.service.UpdateCashCard(r.Context(), caller(r), id, amount)
	metrics.RecordCardOperation("update", outcome(err))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a card owned by the caller.
// DELETE /cashcards/{id}
func (h *CashCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	err = h.service.DeleteCashCard(r.Context(), caller(r), id)
	metrics.RecordCardOperation("delete", outcome(err))
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.logger.Info("Cash card deleted", "id", id, "request_id", middleware.GetRequestID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
