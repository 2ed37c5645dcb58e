package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/middleware"
	"github.com/aidar/kickoff/internal/service"
)

// AuthHandler обрабатывает эндпоинты аутентификации
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest представляет тело запроса на регистрацию
type RegisterRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	SkillLevel int      `json:"skillLevel"`
	Positions  []string `json:"position"`
}

// Bind реализует render.Binder
func (req *RegisterRequest) Bind(*http.Request) error { return nil }

// LoginRequest представляет тело запроса на логин
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Bind реализует render.Binder
func (req *LoginRequest) Bind(*http.Request) error { return nil }

// AuthResponse представляет ответ с пользователем и токеном
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register обрабатывает POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := render.Bind(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeValidation), "invalid request body")
		return
	}

	user, token, err := h.authService.Register(r.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		SkillLevel: req.SkillLevel,
		Positions:  req.Positions,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	setTokenCookie(w, r, token, h.authService.TokenTTL())
	RespondWithJSON(w, r, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.Bind(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeValidation), "invalid request body")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	setTokenCookie(w, r, token, h.authService.TokenTTL())
	RespondWithJSON(w, r, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Logout обрабатывает POST /auth/logout: отзывает токен запроса и очищает cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := middleware.TokenFromRequest(r); err == nil {
		if err := h.authService.Logout(r.Context(), token); err != nil {
			HandleError(w, r, err)
			return
		}
	}

	clearTokenCookie(w, r)
	RespondWithJSON(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

func clearTokenCookie(w http.ResponseWriter, r *http.Request) {
	setTokenCookie(w, r, "", -time.Second)
}

func setTokenCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}
