package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrSyncInProgress      = errors.New("sincronización en curso para el proveedor")
	ErrLockNotObtained     = errors.New("no se pudo obtener el bloqueo")
	ErrUpstreamUnavailable = errors.New("fuente de precios no disponible")
)

// Code etiqueta de la taxonomía de errores del núcleo. Es lo que ve el cliente.
type Code string

const (
	CodeParse               Code = "PARSE_ERROR"
	CodeMissingDependency   Code = "MISSING_DEPENDENCY"
	CodeReferentialConflict Code = "REFERENTIAL_CONFLICT"
	CodeInvalidRequest      Code = "INVALID_REQUEST"
	CodeTransactionFailure  Code = "TRANSACTION_FAILURE"
	CodeNotFound            Code = "NOT_FOUND"
	CodeSyncInProgress      Code = "SYNC_IN_PROGRESS"
	CodeUpstream            Code = "UPSTREAM_UNAVAILABLE"
)

// Error es un error estructurado con etiqueta de taxonomía.
// Message es seguro para mostrar; Cause conserva el error interno para logs.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is permite comparar errores etiquetados contra los sentinels con errors.Is.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeNotFound:
		return target == ErrNotFound
	case CodeInvalidRequest, CodeParse:
		return target == ErrInvalidInput
	case CodeReferentialConflict:
		return target == ErrConflict
	case CodeSyncInProgress:
		return target == ErrSyncInProgress
	case CodeUpstream:
		return target == ErrUpstreamUnavailable
	}
	return false
}

// Retryable indica si el cliente puede reintentar la misma operación.
func (e *Error) Retryable() bool {
	return e.Code == CodeTransactionFailure || e.Code == CodeUpstream || e.Code == CodeSyncInProgress
}

// ParseError dato externo malformado (tamaño o precio del scraping).
func ParseError(format string, args ...any) *Error {
	return &Error{Code: CodeParse, Message: fmt.Sprintf(format, args...)}
}

// MissingDependency falta uno o más insumos base requeridos.
func MissingDependency(names ...string) *Error {
	return &Error{Code: CodeMissingDependency, Message: "faltan insumos base: " + strings.Join(names, ", ")}
}

// ReferentialConflict borrado bloqueado por una referencia (FK).
func ReferentialConflict(message string, cause error) *Error {
	return &Error{Code: CodeReferentialConflict, Message: message, Cause: cause}
}

// InvalidRequest entrada rechazada antes de cualquier mutación.
func InvalidRequest(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound recurso referenciado inexistente.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// SyncInProgress otra corrida de sincronización tiene el bloqueo del proveedor.
func SyncInProgress(supplier string) *Error {
	return &Error{Code: CodeSyncInProgress, Message: "sincronización en curso para " + supplier, Cause: ErrLockNotObtained}
}

// Upstream la fuente externa de precios falló o no respondió a tiempo.
func Upstream(cause error) *Error {
	return &Error{Code: CodeUpstream, Message: "no se pudo obtener la lista de precios", Cause: cause}
}

// TransactionFailure envuelve un fallo del almacenamiento en medio de una unidad de trabajo.
// Si err ya es un *Error etiquetado se devuelve tal cual.
func TransactionFailure(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Code: CodeTransactionFailure, Message: "la operación no se aplicó, reintente", Cause: err}
}

// CodeOf devuelve la etiqueta de taxonomía de err (vacío si no es un error de dominio).
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidRequest
	case errors.Is(err, ErrConflict):
		return CodeReferentialConflict
	case errors.Is(err, ErrSyncInProgress):
		return CodeSyncInProgress
	}
	return ""
}
