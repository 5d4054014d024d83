package main

import (
	"errors"
	"etix/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusForError maps pipeline errors onto HTTP statuses. Transient
// upstream failures surface as 503 so callers (and the gateway's webhook
// retry machinery) know to try again.
func statusForError(err error) int {
	switch {
	case errors.Is(err, types.ErrIntentExpired):
		return http.StatusNotFound
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, types.ErrInsufficientInventory):
		return http.StatusConflict
	case errors.Is(err, types.ErrAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, types.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, types.ErrPaymentNotSuccessful):
		return http.StatusPaymentRequired
	case errors.Is(err, types.ErrTransientUpstream):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(ctx *gin.Context, err error) {
	ctx.JSON(statusForError(err), gin.H{"error": err.Error()})
}
