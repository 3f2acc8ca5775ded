package rest

import (
	"encoding/json"
	"errors"

	"github.com/confcentral/central"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	ErrorMessage string `json:"error_message"`
}

func requestLog(ctx *fiber.Ctx) *logrus.Entry {
	entry := logrus.
		WithField("remote_addr", ctx.Context().RemoteAddr()).
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path()).
		WithField("z_user_agent", string(ctx.Request().Header.Peek("User-Agent"))).
		WithField("z_x_forwared_for", string(ctx.Request().Header.Peek("X-Forwarded-For")))
	if id, ok := ctx.Locals(requestIdLocalsKey).(string); ok {
		entry = entry.WithField("request_id", id)
	}
	return entry
}

var kindStatus = map[central.ErrorKind]int{
	central.KindUnauthorized:    fiber.StatusUnauthorized,
	central.KindNotFound:        fiber.StatusNotFound,
	central.KindConflict:        fiber.StatusConflict,
	central.KindInvalidArgument: fiber.StatusBadRequest,
	central.KindForbidden:       fiber.StatusForbidden,
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.
			Status(fe.Code).
			JSON(&ErrorResponse{ErrorMessage: fe.Message})
	}

	if status, ok := kindStatus[central.KindOf(err)]; ok {
		requestLog(ctx).WithError(err).Debugln("Request rejected.")
		return ctx.
			Status(status).
			JSON(&ErrorResponse{ErrorMessage: err.Error()})
	}

	requestLog(ctx).WithError(err).Errorln("Internal server error.")
	// keep internal server errors private. reply with generic error message.
	return ctx.
		Status(fiber.ErrInternalServerError.Code).
		JSON(&ErrorResponse{ErrorMessage: fiber.ErrInternalServerError.Message})
}

func NotFoundHandler(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound)
}

// combineHandlers runs handlers in order and stops at the first error.
// A handler that calls ctx.Next() hands control to the rest of the fiber chain.
func combineHandlers(handlers ...fiber.Handler) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		for _, handler := range handlers {
			err := handler(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func JsonErrorMessageResponse(message string) string {
	bytes, err := json.Marshal(ErrorResponse{ErrorMessage: message})
	if err != nil {
		panic(err)
	}
	return string(bytes)
}
