package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/middleware"
	"github.com/aidar/kickoff/internal/service"
)

// UserHandler обрабатывает эндпоинты пользователей
type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// UpdateAccountRequest представляет тело запроса на изменение профиля.
// Отсутствующие поля не меняются.
type UpdateAccountRequest struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	SkillLevel  *int     `json:"skillLevel"`
	Positions   []string `json:"position"`
	OldPassword string   `json:"oldPassword"`
	NewPassword string   `json:"newPassword"`
}

// Bind реализует render.Binder
func (req *UpdateAccountRequest) Bind(*http.Request) error { return nil }

// Me обрабатывает GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdateMe обрабатывает PUT /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if err := render.Bind(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeValidation), "invalid request body")
		return
	}

	user, err := h.authService.UpdateAccount(r.Context(), middleware.GetUserIDFromContext(r.Context()), service.UpdateAccountInput{
		Name:        req.Name,
		Email:       req.Email,
		SkillLevel:  req.SkillLevel,
		Positions:   req.Positions,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, user)
}

// DeleteMe обрабатывает DELETE /users/me
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteAccount(r.Context(), middleware.GetUserIDFromContext(r.Context())); err != nil {
		HandleError(w, r, err)
		return
	}

	clearTokenCookie(w, r)
	RespondNoContent(w, r)
}

// GetUser обрабатывает GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, user)
}
