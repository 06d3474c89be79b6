package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fabriqa/configurator-backend/internal/formula"
	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/pathcodec"
	"github.com/fabriqa/configurator-backend/internal/services"
)

// errorStatus maps domain errors to HTTP status codes and a stable
// machine-readable kind. Anything unrecognized is an internal error.
func errorStatus(err error) (int, string) {
	var (
		notFound    *services.NotFoundError
		duplicate   *services.DuplicateNameError
		circular    *services.CircularReferenceError
		hasChildren *services.HasChildrenError
		validation  *services.ValidationError
		calculation *services.CalculationError
		segment     *pathcodec.InvalidSegmentError
		syntax      *formula.SyntaxError
		unknownVar  *formula.UnknownVariableError
		divZero     *formula.DivisionByZeroError
		outOfRange  *formula.OutOfRangeError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &duplicate):
		return http.StatusConflict, "duplicate_name"
	case errors.As(err, &circular):
		return http.StatusConflict, "circular_reference"
	case errors.As(err, &hasChildren):
		return http.StatusConflict, "has_children"
	case errors.As(err, &segment):
		return http.StatusUnprocessableEntity, "invalid_segment"
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.As(err, &calculation):
		return http.StatusUnprocessableEntity, "calculation_failed"
	case errors.As(err, &syntax):
		return http.StatusUnprocessableEntity, "formula_syntax"
	case errors.As(err, &unknownVar):
		return http.StatusUnprocessableEntity, "formula_unknown_variable"
	case errors.As(err, &divZero):
		return http.StatusUnprocessableEntity, "formula_division_by_zero"
	case errors.As(err, &outOfRange):
		return http.StatusUnprocessableEntity, "formula_out_of_range"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondError(c *gin.Context, log *logger.Logger, err error) {
	status, kind := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err, "path", c.FullPath())
		c.JSON(status, gin.H{"error": "internal error", "kind": kind})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
