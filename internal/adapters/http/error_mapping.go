package httpadapter

import (
	"net/http"

	"github.com/noteground/noteground/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNoteNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrGenerationFailed),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
