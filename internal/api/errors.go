package api

import (
	"errors"
	"net/http"

	"vitrina/internal/catalog"
)

type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Коды ошибок, которыми будем пользоваться
const (
	ErrRequired         = "required"
	ErrTypeMismatch     = "type_mismatch"
	ErrInvalidOrder     = "invalid_order"
	ErrNotFound         = "not_found"
	ErrDefaultProtected = "default_protected"
	ErrInvalidPayload   = "invalid_payload"
)

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

// fieldErrorsFor переводит типизированные ошибки ядра в FieldError.
// Ошибки шлюза сюда не попадают — их отдаём наверх как есть.
func fieldErrorsFor(err error) []FieldError {
	var (
		valErr  *catalog.ValidationError
		reqErr  *catalog.RequiredFieldError
		ordErr  *catalog.InvalidOrderError
		nfErr   *catalog.NotFoundError
		defErr  *catalog.DefaultProtectedError
	)
	switch {
	case errors.As(err, &valErr):
		return []FieldError{ferr(ErrTypeMismatch, valErr.Attribute, valErr.Error())}
	case errors.As(err, &reqErr):
		return []FieldError{ferr(ErrRequired, reqErr.Attribute, reqErr.Error())}
	case errors.As(err, &ordErr):
		return []FieldError{ferr(ErrInvalidOrder, ordErr.Subject, ordErr.Error())}
	case errors.As(err, &nfErr):
		return []FieldError{ferr(ErrNotFound, nfErr.Kind, nfErr.Error())}
	case errors.As(err, &defErr):
		return []FieldError{ferr(ErrDefaultProtected, "is_default", defErr.Error())}
	}
	return nil
}

func statusForErrors(errs []FieldError) int {
	for _, e := range errs {
		switch e.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrDefaultProtected:
			return http.StatusConflict
		}
	}
	return http.StatusBadRequest
}
