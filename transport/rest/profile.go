package rest

import (
	"github.com/confcentral/central"
	"github.com/confcentral/central/booking"
	"github.com/gofiber/fiber/v2"
)

type ProfileController struct {
	Service *booking.Service
}

func (c *ProfileController) InstallTo(app *fiber.App) {
	app.Get("/profile", c.serveProfile)
	app.Post("/profile", c.serveSaveProfile)
}

func (c *ProfileController) serveProfile(ctx *fiber.Ctx) error {
	profile, err := c.Service.GetProfile(ctx.Context(), identityOf(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(profile)
}

func (c *ProfileController) serveSaveProfile(ctx *fiber.Ctx) error {
	body := struct {
		DisplayName  *string `json:"displayName"`
		TeeShirtSize *string `json:"teeShirtSize"`
	}{}
	if err := ctx.BodyParser(&body); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	form := central.ProfileForm{DisplayName: body.DisplayName}
	if body.TeeShirtSize != nil {
		size, err := central.ParseTeeShirtSize(*body.TeeShirtSize)
		if err != nil {
			return err
		}
		form.TeeShirtSize = &size
	}

	profile, err := c.Service.SaveProfile(ctx.Context(), identityOf(ctx), form)
	if err != nil {
		return err
	}
	return ctx.JSON(profile)
}
