package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adaptive-quiz/backend/internal/auth"
	"github.com/adaptive-quiz/backend/internal/models"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the open routes on r and the identity-checked routes on
// protected.
func (h *Handler) Register(r, protected *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/generate-questions", h.GenerateQuestions).Methods(http.MethodPost)

	protected.HandleFunc("/feedback", h.Feedback).Methods(http.MethodPost)
	protected.HandleFunc("/analytics", h.Analytics).Methods(http.MethodGet)
	protected.HandleFunc("/attempts", h.ListAttempts).Methods(http.MethodGet)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{OK: true})
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeGenerateRequest(r.Body)
	if err != nil {
		var vi *ValidationIssues
		if errors.As(err, &vi) {
			h.logger.Debug("generate request rejected", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string][]Issue{"error": vi.Issues})
			return
		}
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.GenerateQuestions(r.Context(), req)
	if err != nil {
		h.logger.Error("generate questions failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorDetailResponse{Error: "Server error", Details: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("feedback body rejected", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp := h.service.Feedback(r.Context(), auth.IdentityFrom(r.Context()), req)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	resp, err := h.service.Analytics(r.Context(), id.UserID)
	if errors.Is(err, ErrHistoryUnavailable) {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Analytics not available"})
		return
	}
	if err != nil {
		h.logger.Error("analytics failed", zap.String("uid", id.UserID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch analytics"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	limit = ClampLimit(limit)

	attempts, err := h.service.ListAttempts(r.Context(), id.UserID, limit)
	if errors.Is(err, ErrHistoryUnavailable) {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "History not available"})
		return
	}
	if err != nil {
		h.logger.Error("list attempts failed", zap.String("uid", id.UserID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch history"})
		return
	}

	writeJSON(w, http.StatusOK, models.AttemptListResponse{Attempts: attempts, Limit: limit})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
