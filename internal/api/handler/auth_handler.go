package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"hapyland/internal/api/middleware"
	"hapyland/internal/app/service"
	"hapyland/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgUserCreated  = "Successfully created new user."
	msgUserExists   = "User already exists"
	msgUserReturned = "Successfully returned user"
	msgUserMissing  = "User does not exist"
	msgNoSession    = "No active session"
)

type AuthHandler struct {
	authService *service.AuthService
	cookieName  string
	secure      bool
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, cookieName string, secure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName, secure: secure, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/login/", h.login)
	r.Get("/session", h.session)
}

type userData struct {
	User *string `json:"user"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		// clients have always been told 400 for a taken username
		if errors.Is(err, common.ErrConflict) {
			common.RespondWithError(w, http.StatusBadRequest, msgUserExists)
			return
		}
		respondServiceError(w, r, h.logger, err)
		return
	}

	common.RespondWithEnvelope(w, http.StatusCreated,
		map[string]string{"username": user.Username}, common.StatusSuccess, msgUserCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	res, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}
	if !res.Found {
		common.RespondWithEnvelope(w, http.StatusOK, userData{}, common.StatusFailed, msgUserMissing)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    res.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	common.RespondWithEnvelope(w, http.StatusOK, userData{User: &res.User.Username}, common.StatusSuccess, msgUserReturned)
}

func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	if !ok {
		common.RespondWithEnvelope(w, http.StatusOK, userData{}, common.StatusFailed, msgNoSession)
		return
	}
	common.RespondWithEnvelope(w, http.StatusOK, userData{User: &username}, common.StatusSuccess, msgUserReturned)
}
