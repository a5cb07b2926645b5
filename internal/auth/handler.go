package auth

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/112Alex/authgate/internal/platform/httpx"
	"github.com/112Alex/authgate/internal/shared"
)

// PurgeScheduler enqueues asynchronous cleanup of expired token records.
type PurgeScheduler interface {
	SchedulePurge(ctx context.Context, batchSize int) error
}

// Handler wires HTTP endpoints for credential flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	throttle  *LoginThrottle
	purger    PurgeScheduler
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. The purge scheduler may be nil
// when no background queue is available.
func NewHandler(logger *slog.Logger, service *Service, throttle *LoginThrottle, purger PurgeScheduler) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		throttle:  throttle,
		purger:    purger,
		validator: validator.New(),
	}
}

// MountRoutes registers credential routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/login/refresh", h.handleRefresh)
	r.Post("/logout", h.handleLogout)
}

// MountAdminRoutes registers maintenance routes. Callers gate these behind
// superuser checks.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/tokens/purge", h.handlePurgeTokens)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type accessResponse struct {
	Access string `json:"access"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	ip := clientIP(r)
	allowed, err := h.throttle.Allow(r.Context(), req.Email, ip)
	if err != nil {
		h.logger.Warn("login throttle", slog.Any("error", err))
	}
	if !allowed {
		httpx.RespondError(w, shared.ErrThrottled)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if recErr := h.throttle.RecordFailure(r.Context(), req.Email, ip); recErr != nil {
			h.logger.Warn("record login failure", slog.Any("error", recErr))
		}
		httpx.RespondError(w, err)
		return
	}
	if err := h.throttle.Reset(r.Context(), req.Email, ip); err != nil {
		h.logger.Warn("reset login throttle", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	access, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, accessResponse{Access: access})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Logout(r.Context(), req.Refresh); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusResetContent)
}

type purgeRequest struct {
	BatchSize int `json:"batch_size" validate:"omitempty,min=1"`
}

func (h *Handler) handlePurgeTokens(w http.ResponseWriter, r *http.Request) {
	if h.purger == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "background queue is not configured")
		return
	}
	var req purgeRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
	}
	if err := h.purger.SchedulePurge(r.Context(), req.BatchSize); err != nil {
		h.logger.Error("schedule token purge", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "could not enqueue purge")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
