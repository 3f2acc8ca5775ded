package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIdLocalsKey = "request_id"

func LogHandler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id := uuid.NewString()
		ctx.Locals(requestIdLocalsKey, id)
		ctx.Set("X-Request-Id", id)

		requestLog(ctx).Infoln("Handling request.")
		return ctx.Next()
	}
}
