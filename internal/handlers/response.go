package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"ticktee/internal/repositories"
	"ticktee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ValidationError carries per-field messages for a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return check(validate, dst)
}

func check(validate *validator.Validate, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Namespace()[strings.Index(e.Namespace(), ".")+1:]] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Fields: fields}
}

// statusFor maps service and repository errors to HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, repositories.ErrDuplicate),
		errors.Is(err, repositories.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrStorageDisabled):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrPaymentNotRequired),
		errors.Is(err, services.ErrProofRequired):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Unexpected errors are logged.
func respondError(c *fiber.Ctx, log logrus.FieldLogger, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   ve.Error(),
			"details": ve.Fields,
		})
	}

	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{"method": c.Method(), "path": c.Path()}).Error("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// ErrorHandler renders errors returned by handlers and middleware in the same
// shape as respondError.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, log, err)
	}
}

func pageFrom(c *fiber.Ctx) services.Page {
	return services.Page{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 0)}.Normalize()
}

func listResponse(key string, items interface{}, total int64, page services.Page) fiber.Map {
	return fiber.Map{
		key:     items,
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
	}
}
