package service

import (
	"errors"

	"simplegest/internal/apiclient"
)

var (
	ErrValidation        = errors.New("datos inválidos")
	ErrNotFound          = errors.New("registro no encontrado")
	ErrInsufficientStock = errors.New("No hay suficiente stock disponible para esta modificación")
	ErrNotEditable       = errors.New("La solicitud ya no admite cambios")
	ErrInvalidTransition = errors.New("Transición de estado no permitida")
	ErrAuditDisabled     = errors.New("el registro de actividad no está configurado")
	ErrArchiveDisabled   = errors.New("el archivo de reportes no está configurado")
)

// ValidationError carries a message meant for the user. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError names what could not be found
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return e.What + " no encontrado"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// UserMessage turns a service or client error into notification text
func UserMessage(err error, fallback string) string {
	var validation *ValidationError
	var notFound *NotFoundError
	var partial *PartialUpdateError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &partial):
		return partial.Error()
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrNotEditable),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrAuditDisabled),
		errors.Is(err, ErrArchiveDisabled):
		return err.Error()
	default:
		return apiclient.UserMessage(err, fallback)
	}
}
