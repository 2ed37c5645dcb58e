package domain

import "errors"

// Доменные ошибки движка матчей
var (
	// ErrValidation возвращается при некорректных или отсутствующих входных данных
	ErrValidation = errors.New("validation error")

	// ErrNotFound возвращается когда ресурс не найден
	ErrNotFound = errors.New("resource not found")

	// ErrMatchNotFound возвращается когда матч не найден
	ErrMatchNotFound = errors.New("match not found")

	// ErrUserNotFound возвращается когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden возвращается когда действие доступно только организатору
	ErrForbidden = errors.New("only the organizer can perform this action")

	// ErrAlreadyJoined возвращается при повторной записи игрока на матч
	ErrAlreadyJoined = errors.New("player already joined this match")

	// ErrMatchFull возвращается когда в матче нет свободных мест
	ErrMatchFull = errors.New("match is full")

	// ErrOrganizerCannotLeave возвращается при попытке организатора покинуть свой матч
	ErrOrganizerCannotLeave = errors.New("organizer cannot leave the match")

	// ErrNotAJoinedPlayer возвращается когда игрок не записан на матч
	ErrNotAJoinedPlayer = errors.New("player has not joined this match")

	// ErrInsufficientPlayers возвращается когда игроков слишком мало для формирования команд
	ErrInsufficientPlayers = errors.New("not enough players to form teams")

	// ErrStorage оборачивает ошибки хранилища
	ErrStorage = errors.New("storage error")

	// ErrEmailTaken возвращается при регистрации с уже занятым email
	ErrEmailTaken = errors.New("email is already in use")

	// ErrUnauthorized возвращается при неудачной аутентификации
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken возвращается когда JWT токен невалиден
	ErrInvalidToken = errors.New("invalid token")
)

// ErrorCode представляет машиночитаемый код ошибки
type ErrorCode string

// Стабильные коды ошибок API
const (
	CodeValidation           ErrorCode = "VALIDATION_ERROR"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeForbidden            ErrorCode = "FORBIDDEN"
	CodeAlreadyJoined        ErrorCode = "ALREADY_JOINED"
	CodeMatchFull            ErrorCode = "MATCH_FULL"
	CodeOrganizerCannotLeave ErrorCode = "ORGANIZER_CANNOT_LEAVE"
	CodeNotAJoinedPlayer     ErrorCode = "NOT_A_JOINED_PLAYER"
	CodeInsufficientPlayers  ErrorCode = "INSUFFICIENT_PLAYERS"
	CodeStorage              ErrorCode = "STORAGE_ERROR"
	CodeEmailTaken           ErrorCode = "EMAIL_TAKEN"
	CodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrUserNotFound):
		return CodeNotFound
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrAlreadyJoined):
		return CodeAlreadyJoined
	case errors.Is(err, ErrMatchFull):
		return CodeMatchFull
	case errors.Is(err, ErrOrganizerCannotLeave):
		return CodeOrganizerCannotLeave
	case errors.Is(err, ErrNotAJoinedPlayer):
		return CodeNotAJoinedPlayer
	case errors.Is(err, ErrInsufficientPlayers):
		return CodeInsufficientPlayers
	case errors.Is(err, ErrStorage):
		return CodeStorage
	case errors.Is(err, ErrEmailTaken):
		return CodeEmailTaken
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
