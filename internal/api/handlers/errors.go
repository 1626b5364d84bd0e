package handlers

import (
	"errors"

	"github.com/amaumene/imagesearch/internal/models"
	"github.com/gofiber/fiber/v2"
)

// HTTPError maps domain errors to a fiber error with a matching status code
func HTTPError(err error) *fiber.Error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}

	var te *models.TransportError
	switch {
	case errors.Is(err, models.ErrEmptyQuery),
		errors.Is(err, models.ErrInvalidPage),
		errors.Is(err, models.ErrInvalidPageSize),
		errors.Is(err, models.ErrInvalidSort):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrSessionClosed):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.As(err, &te):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// ErrorHandler renders every error as {"error": message}
func ErrorHandler(c *fiber.Ctx, err error) error {
	fe := HTTPError(err)
	return c.Status(fe.Code).JSON(fiber.Map{
		"error": fe.Message,
	})
}
