package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrorHandler shows fiber errors with their own message and every other
// failure as a generic error page with status 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := failureMessage

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	log.Error().Err(err).Int("code", code).Str("path", c.Path()).Msg("Request failed")
	return render(c, code, pageData{Error: message})
}
