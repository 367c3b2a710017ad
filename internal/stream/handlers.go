package stream

import (
	"context"

	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// OwnsTrip reports whether tripID exists and belongs to userID.
type OwnsTrip func(ctx context.Context, userID, tripID string) error

func RegisterRoutes(r fiber.Router, hub *Hub, authMiddleware fiber.Handler, owns OwnsTrip) {
	r.Get("/:id/live", authMiddleware, func(c *fiber.Ctx) error {
		if err := owns(c.Context(), auth.UserID(c), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		tripID := c.Params("id")
		client := hub.Register(tripID)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		// Closing the send channel lets the writer drain and exit.
		hub.Unregister(client)
		<-done
	}))
}
