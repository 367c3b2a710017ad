package trip

import (
	"errors"

	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/auth"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		views, err := svc.Recent(c.Context(), auth.UserID(c))
		if err != nil {
			return serviceError(err)
		}
		if views == nil {
			views = []View{}
		}
		return c.JSON(views)
	})

	r.Get("/active", authMiddleware, func(c *fiber.Ctx) error {
		view, err := svc.Active(c.Context(), auth.UserID(c))
		if err != nil {
			return serviceError(err)
		}
		if view == nil {
			return c.JSON(nil)
		}
		return c.JSON(view)
	})

	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		var req StartInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.EmergencyContactID == "" || req.ActivityType == "" {
			return fiber.NewError(fiber.StatusBadRequest, "emergencyContactId and activityType required")
		}
		view, err := svc.Start(c.Context(), auth.UserID(c), req)
		if err != nil {
			return serviceError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	})

	r.Put("/:id/location", authMiddleware, func(c *fiber.Ctx) error {
		var req LocationInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := svc.UpdateLocation(c.Context(), auth.UserID(c), c.Params("id"), req)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(view)
	})

	r.Put("/:id/complete", authMiddleware, func(c *fiber.Ctx) error {
		view, err := svc.Complete(c.Context(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(view)
	})

	r.Put("/:id/sos", authMiddleware, func(c *fiber.Ctx) error {
		var req LocationInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := svc.SOS(c.Context(), auth.UserID(c), c.Params("id"), req)
		if err != nil {
			return serviceError(err)
		}
		return c.JSON(view)
	})

	r.Get("/:id/history", authMiddleware, func(c *fiber.Ctx) error {
		updates, err := svc.History(c.Context(), auth.UserID(c), c.Params("id"))
		if err != nil {
			return serviceError(err)
		}
		if updates == nil {
			updates = []LocationUpdate{}
		}
		return c.JSON(updates)
	})
}

func serviceError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrContactNotFound), errors.Is(err, geo.ErrInvalidCoordinate):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotActive), errors.Is(err, ErrActiveExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
