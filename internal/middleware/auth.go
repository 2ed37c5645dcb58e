package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/service"
)

// ContextKey это кастомный тип для ключей контекста
type ContextKey string

// UserIDKey ключ контекста для ID пользователя
const UserIDKey ContextKey = "user_id"

// TokenCookieName имя cookie с JWT токеном
const TokenCookieName = "token"

var (
	errMissingToken = errors.New("missing authorization token")
	errBadHeader    = errors.New("invalid authorization header format")
)

type authError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AuthMiddleware создает middleware для валидации JWT токенов.
// Токен берется из заголовка Authorization или из cookie; отозванные токены отклоняются.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := TokenFromRequest(r)
			if err != nil {
				unauthorized(w, r, err.Error())
				return
			}

			// Валидируем токен
			claims, err := authService.ValidateToken(r.Context(), token)
			switch {
			case errors.Is(err, domain.ErrInvalidToken):
				unauthorized(w, r, "invalid or expired token")
				return
			case err != nil:
				respondError(w, r, http.StatusInternalServerError, domain.CodeStorage, "storage is unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest извлекает токен из заголовка Authorization (Bearer) или из cookie
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		// Проверяем формат Bearer
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", errBadHeader
		}
		return parts[1], nil
	}

	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errMissingToken
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusUnauthorized, domain.CodeUnauthorized, message)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code domain.ErrorCode, message string) {
	var body authError
	body.Error.Code = string(code)
	body.Error.Message = message

	render.Status(r, status)
	render.JSON(w, r, body)
}

// GetUserIDFromContext извлекает ID пользователя из контекста
func GetUserIDFromContext(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
