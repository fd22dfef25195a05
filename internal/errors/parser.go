package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a client-safe description of an unexpected error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError classifies database and network failures without leaking
// driver text to the client. ctx names the resource, e.g. "product".
func ParseError(err error, ctx string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: "internal server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: notFoundMessage(ctx)}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{Status: http.StatusServiceUnavailable, Code: InternalDatabaseError, Message: "request timed out"}
	}

	errLower := strings.ToLower(err.Error())

	// postgres: 23505 duplicate key, sqlite: UNIQUE constraint failed
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// postgres: 23503, sqlite: FOREIGN KEY constraint failed
	if strings.Contains(errLower, "foreign key constraint") {
		return parseForeignKeyError(errLower)
	}

	if strings.Contains(errLower, "violates not-null constraint") || strings.Contains(errLower, "not null constraint failed") {
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: "a required field is missing"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Status: http.StatusBadGateway, Code: InternalExternalAPI, Message: "upstream service unavailable, please retry"}
	}

	return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: "internal server error"}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "wishlist"):
		return ErrorInfo{Status: http.StatusConflict, Code: WishlistAlreadyExists, Message: "product already in wishlist"}
	case strings.Contains(errLower, "slug"):
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "slug already in use"}
	case strings.Contains(errLower, "event_id"):
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "event already processed"}
	}
	return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "resource already exists"}
}

func parseForeignKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceConflict, Message: "resource is still referenced"}
	}
	if strings.Contains(errLower, "product_id") || strings.Contains(errLower, "fk_products") {
		return ErrorInfo{Status: http.StatusNotFound, Code: ProductNotFound, Message: "product not found"}
	}
	return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: "referenced resource not found"}
}

func notFoundMessage(ctx string) string {
	ctx = strings.TrimSpace(ctx)
	if ctx == "" {
		return "resource not found"
	}
	return ctx + " not found"
}
