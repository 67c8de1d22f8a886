package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform response wrapper used by every endpoint.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// AppError represents a custom application error carrying the HTTP status
// it should be reported with.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Status:  fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusBadRequest,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
		Err:     err,
	}
}

// Respond writes a success envelope with the given data.
func Respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Code: status, Data: data})
}

// RespondMessage writes a success envelope carrying only a message.
func RespondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Code: status, Message: message})
}

// RespondWithError writes an error envelope. AppError values carry their
// own status; anything else is reported verbatim under the given status.
// Internal errors echo the underlying error text in the message.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	if appErr, ok := err.(*AppError); ok {
		status = appErr.Status
		msg := appErr.Message
		if appErr.Err != nil {
			msg = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
		return c.Status(status).JSON(Envelope{Code: status, Message: msg})
	}
	return c.Status(status).JSON(Envelope{Code: status, Message: err.Error()})
}
