package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/VAZlabs/ShortTrack/internal/auth"
	"github.com/VAZlabs/ShortTrack/internal/model"
	"github.com/VAZlabs/ShortTrack/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler связывает HTTP-границу с сервисами ядра.
type Handler struct {
	Shortener *service.ShortenerService
	Stats     *service.StatsService
	Users     *service.UserService
	Auth      *auth.Auth
	Logger    *zap.Logger
	BaseURL   string
}

// NewHandler создаёт обработчики с базовым URL для коротких ссылок.
func NewHandler(shortener *service.ShortenerService, stats *service.StatsService, users *service.UserService, authService *auth.Auth, logger *zap.Logger, baseURL string) *Handler {
	return &Handler{
		Shortener: shortener,
		Stats:     stats,
		Users:     users,
		Auth:      authService,
		Logger:    logger,
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// ReceiveURL принимает text/plain тело с URL и отвечает короткой ссылкой.
func (h *Handler) ReceiveURL(res http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(res, "BadRequest", http.StatusBadRequest)
		return
	}

	link, err := h.Shortener.Create(req.Context(), strings.TrimSpace(string(body)), nil)
	if err != nil {
		h.writeError(res, err)
		return
	}

	res.Header().Set("Content-Type", "text/plain")
	res.WriteHeader(http.StatusCreated)
	res.Write([]byte(h.BaseURL + "/" + link.ShortCode))
}

// ReceiveShorten принимает JSON {"url": ..., "expires_at": ...}.
func (h *Handler) ReceiveShorten(res http.ResponseWriter, req *http.Request) {
	var shortenReq model.ShortenRequest
	if err := json.NewDecoder(req.Body).Decode(&shortenReq); err != nil {
		http.Error(res, "Invalid JSON", http.StatusBadRequest)
		return
	}

	link, err := h.Shortener.Create(req.Context(), shortenReq.URL, shortenReq.Expires)
	if err != nil {
		h.writeError(res, err)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusCreated)
	json.NewEncoder(res).Encode(model.ShortenResponse{
		Result: h.BaseURL + "/" + link.ShortCode,
	})
}

// ResponseURL редиректит по короткому коду. Запись клика не ждётся:
// ответ уходит сразу после резолва.
func (h *Handler) ResponseURL(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	if id == "" {
		http.Error(res, "Bad Request: Missing ID in URL", http.StatusBadRequest)
		return
	}

	clickCtx := model.ClickContext{
		Addr:    req.RemoteAddr,
		Agent:   req.UserAgent(),
		Referer: req.Referer(),
	}
	origin, err := h.Shortener.ResolveAndTrack(req.Context(), id, clickCtx)
	if err != nil {
		h.writeError(res, err)
		return
	}

	res.Header().Set("Location", origin)
	res.WriteHeader(http.StatusTemporaryRedirect)
}

// StatsHandler отдаёт статистику по коду; истёкшие ссылки тоже видны.
func (h *Handler) StatsHandler(res http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")
	if id == "" {
		http.Error(res, "Bad Request: Missing ID in URL", http.StatusBadRequest)
		return
	}

	stats, err := h.Stats.GetStats(req.Context(), id)
	if err != nil {
		h.writeError(res, err)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	json.NewEncoder(res).Encode(stats)
}

// RegisterHandler регистрирует пользователя и сразу выдаёт auth-куку.
func (h *Handler) RegisterHandler(res http.ResponseWriter, req *http.Request) {
	var regReq model.RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&regReq); err != nil {
		http.Error(res, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Register(req.Context(), regReq.Username, regReq.Email, regReq.Password)
	if err != nil {
		h.writeError(res, err)
		return
	}

	h.Auth.IssueCookie(res, user.ID.String())
	res.WriteHeader(http.StatusCreated)
}

// LoginHandler проверяет учётные данные и выдаёт auth-куку.
func (h *Handler) LoginHandler(res http.ResponseWriter, req *http.Request) {
	var loginReq model.LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		http.Error(res, "Invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Login(req.Context(), loginReq.Email, loginReq.Password)
	if err != nil {
		h.writeError(res, err)
		return
	}

	h.Auth.IssueCookie(res, user.ID.String())
	res.WriteHeader(http.StatusOK)
}

// PingHandler проверяет доступность хранилища.
func (h *Handler) PingHandler(res http.ResponseWriter, req *http.Request) {
	if err := h.Shortener.Ping(req.Context()); err != nil {
		http.Error(res, "Storage unavailable", http.StatusInternalServerError)
		return
	}
	res.WriteHeader(http.StatusOK)
}

// writeError переводит таксономию ошибок ядра в HTTP-статусы.
// Истёкшая ссылка отличима от несуществующей: 410 против 404.
func (h *Handler) writeError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidURL):
		http.Error(res, "Invalid URL", http.StatusBadRequest)
	case errors.Is(err, model.ErrNotFound):
		http.Error(res, "Not found", http.StatusNotFound)
	case errors.Is(err, model.ErrExpired):
		http.Error(res, "Link expired", http.StatusGone)
	case errors.Is(err, model.ErrDuplicateUser):
		http.Error(res, "User already exists", http.StatusConflict)
	case errors.Is(err, model.ErrBadCredentials):
		http.Error(res, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, model.ErrStoreUnavailable):
		http.Error(res, "Storage unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, model.ErrCodeSpaceExhausted):
		h.Logger.Error("Исчерпаны попытки генерации кода", zap.Error(err))
		http.Error(res, "Internal error", http.StatusInternalServerError)
	default:
		h.Logger.Error("Необработанная ошибка", zap.Error(err))
		http.Error(res, "Internal error", http.StatusInternalServerError)
	}
}
