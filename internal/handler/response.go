package handler

import (
	"net/http"

	"github.com/go-chi/render"
)

// RespondWithJSON отправляет JSON ответ с указанным статус кодом
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// RespondNoContent отвечает 204 без тела
func RespondNoContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}
