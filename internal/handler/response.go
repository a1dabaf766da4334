package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"go-inventory-tims/internal/access"
	"go-inventory-tims/internal/apperr"
	"go-inventory-tims/internal/middleware"
	"go-inventory-tims/internal/ws"
)

// Publisher receives live-feed events after a change has committed.
type Publisher interface {
	Publish(ev ws.Event)
}

// page renders a GET response, attaching any pending notice and the session user.
func page(c *fiber.Ctx, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if notice := middleware.PopFlash(c); notice != "" {
		data["notice"] = notice
	}
	if sess := middleware.CurrentSession(c); sess != nil {
		data["user"] = fiber.Map{"id": sess.UserID, "username": sess.Username, "role": sess.Role}
	}
	return c.JSON(data)
}

// fail maps err onto the response. Correctable errors echo input back so the
// form can be re-shown; store failures are logged and hidden.
func fail(c *fiber.Ctx, err error, input interface{}) error {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return middleware.Deny(c, access.DenyUnauthenticated)
	case errors.Is(err, apperr.ErrForbidden):
		return middleware.Deny(c, access.DenyForbidden)
	}

	he := apperr.MapError(err)
	if he.StatusCode >= fiber.StatusInternalServerError {
		zerolog.Ctx(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	body := fiber.Map{"error": he.Message, "code": he.Code, "notice": he.Message}
	if input != nil && apperr.IsUserCorrectable(err) {
		body["input"] = input
	}
	return c.Status(he.StatusCode).JSON(body)
}

// paramID reads the :id route parameter. Anything but a positive integer is
// reported as a missing entity.
func paramID(c *fiber.Ctx, entity string) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, apperr.NotFound(entity)
	}
	return uint(id), nil
}

func actorID(c *fiber.Ctx) uint {
	if sess := middleware.CurrentSession(c); sess != nil {
		return sess.UserID
	}
	return 0
}

func actorName(c *fiber.Ctx) string {
	if sess := middleware.CurrentSession(c); sess != nil {
		return sess.Username
	}
	return ""
}

// parseBody decodes a form or JSON body; decoding failures are invalid input.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Invalid("could not read form: %v", err)
	}
	return nil
}
