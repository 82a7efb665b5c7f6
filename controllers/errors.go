package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/utils"
)

// respondError maps an error kind to its HTTP status and envelope code.
// Unexpected errors are attached to the context so the access log records them.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, apperror.MessageOf(err, "not found"))
	case errors.Is(err, apperror.ErrSelfReference):
		utils.Error(ctx, http.StatusBadRequest, 40010, apperror.MessageOf(err, "self reference rejected"))
	case errors.Is(err, apperror.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40000, apperror.MessageOf(err, "invalid request"))
	case errors.Is(err, apperror.ErrUnauthorized):
		utils.Error(ctx, http.StatusUnauthorized, 40100, apperror.MessageOf(err, "unauthorized"))
	case errors.Is(err, apperror.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40300, apperror.MessageOf(err, "forbidden"))
	case errors.Is(err, apperror.ErrDuplicateKey):
		utils.Error(ctx, http.StatusConflict, 40900, apperror.MessageOf(err, "already exists"))
	default:
		_ = ctx.Error(err)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}

// parseID reads a positive numeric path parameter.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parsePage reads skip/limit query parameters. Unparseable values fall back to zero,
// which the services turn into defaults.
func parsePage(ctx *gin.Context) (int, int) {
	skip, _ := strconv.Atoi(ctx.Query("skip"))
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	return skip, limit
}
