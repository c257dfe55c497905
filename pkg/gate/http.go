package gate

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/vortexpump/wallet-middleware/pkg/app/errors"
	apphttp "github.com/vortexpump/wallet-middleware/pkg/app/http"
)

// ActionResponse is the wire form of an Outcome. Every handled event gets a
// unique id so transport-side rendering and audit logs can correlate.
type ActionResponse struct {
	EventID       string `json:"event_id"`
	Outcome       string `json:"outcome"`
	Action        string `json:"action"`
	Balance       string `json:"balance,omitzero"`
	PublicAddress string `json:"public_address,omitzero"`
	Threshold     string `json:"threshold,omitzero"`
}

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service  Service
	validate *validator.Validate
	logger   *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the action gate on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}

	r.Post("/actions", apphttp.HandleError(h.handleAction))
}

func (h *HTTP) handleAction(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req ActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := h.validate.Struct(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid action request")
	}

	outcome, err := h.service.Handle(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrUnknownAction) {
			return apperrors.BadRequestError(err, "unknown action")
		}
		return err
	}

	h.writeJSON(w, http.StatusOK, toActionResponse(outcome))
	return nil
}

func toActionResponse(outcome *Outcome) *ActionResponse {
	resp := &ActionResponse{
		EventID:       uuid.NewString(),
		Outcome:       string(outcome.Kind),
		Action:        string(outcome.Action),
		PublicAddress: outcome.PublicAddress,
	}

	switch outcome.Kind {
	case OutcomeExecute, OutcomeDeny, OutcomeWallet:
		resp.Balance = outcome.Balance.String()
	}
	if !outcome.Threshold.IsZero() {
		resp.Threshold = outcome.Threshold.String()
	}
	return resp
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
