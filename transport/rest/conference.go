package rest

import (
	"net/url"
	"strings"
	"time"

	"github.com/confcentral/central"
	"github.com/confcentral/central/booking"
	"github.com/gofiber/fiber/v2"
)

type ConferenceController struct {
	Service *booking.Service
}

func (c *ConferenceController) InstallTo(app *fiber.App) {
	app.Post("/conference", c.serveCreate)
	app.Get("/conference/:key", c.serveConference)
	app.Post("/conference/:key/registration", c.serveRegister)
	app.Delete("/conference/:key/registration", c.serveUnregister)
	app.Get("/conferences/attending", c.serveAttending)
	app.Get("/conferences/created", c.serveCreated)
}

type conferenceRequest struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Topics       []string  `json:"topics"`
	City         string    `json:"city"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	MaxAttendees int       `json:"maxAttendees"`
}

func (c *ConferenceController) serveCreate(ctx *fiber.Ctx) error {
	var body conferenceRequest
	if err := ctx.BodyParser(&body); err != nil {
		requestLog(ctx).WithError(err).Infoln("Invalid body.")
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing name")
	}
	if !body.StartDate.IsZero() && !body.EndDate.IsZero() && body.EndDate.Before(body.StartDate) {
		return fiber.NewError(fiber.StatusBadRequest, "end date before start date")
	}

	conference, err := c.Service.CreateConference(ctx.Context(), identityOf(ctx), central.ConferenceForm{
		Name:         name,
		Description:  body.Description,
		Topics:       body.Topics,
		City:         body.City,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		MaxAttendees: body.MaxAttendees,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(conference)
}

func websafeKeyParam(ctx *fiber.Ctx) (string, error) {
	key, err := url.PathUnescape(ctx.Params("key"))
	if err != nil || key == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid conference key")
	}
	return key, nil
}

func (c *ConferenceController) serveConference(ctx *fiber.Ctx) error {
	key, err := websafeKeyParam(ctx)
	if err != nil {
		return err
	}
	conference, err := c.Service.GetConference(ctx.Context(), key)
	if err != nil {
		return err
	}
	return ctx.JSON(conference)
}

func (c *ConferenceController) serveRegister(ctx *fiber.Ctx) error {
	key, err := websafeKeyParam(ctx)
	if err != nil {
		return err
	}
	registration, err := c.Service.RegisterForConference(ctx.Context(), identityOf(ctx), key)
	if err != nil {
		return err
	}
	return ctx.JSON(registration)
}

func (c *ConferenceController) serveUnregister(ctx *fiber.Ctx) error {
	key, err := websafeKeyParam(ctx)
	if err != nil {
		return err
	}
	registration, err := c.Service.UnregisterFromConference(ctx.Context(), identityOf(ctx), key)
	if err != nil {
		return err
	}
	return ctx.JSON(registration)
}

func (c *ConferenceController) serveAttending(ctx *fiber.Ctx) error {
	conferences, err := c.Service.GetConferencesToAttend(ctx.Context(), identityOf(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(conferences)
}

func (c *ConferenceController) serveCreated(ctx *fiber.Ctx) error {
	conferences, err := c.Service.GetConferencesCreated(ctx.Context(), identityOf(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(conferences)
}
