package stream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func asUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func allowAll(context.Context, string, string) error { return nil }

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api/trips"), NewHub(nil), asUser("user-1"), allowAll)

	req := httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/live", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("expected non-200 for non-websocket request")
	}
}

func TestStreamHandlersRequireAuth(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api/trips"), NewHub(nil), auth.JWTMiddleware("secret"), allowAll)

	req := httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/live", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer token, got %d", resp.StatusCode)
	}
}

func TestStreamHandlersForeignTrip(t *testing.T) {
	app := fiber.New()
	denyAll := func(context.Context, string, string) error {
		return errors.New("trip not found")
	}
	RegisterRoutes(app.Group("/api/trips"), NewHub(nil), asUser("user-other"), denyAll)

	req := httptest.NewRequest(http.MethodGet, "/api/trips/trip-1/live", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for a trip the caller does not own, got %d", resp.StatusCode)
	}
}

func TestStreamHandlersWebsocketBroadcast(t *testing.T) {
	hub := NewHub(nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/api/trips"), hub, asUser("user-1"), allowAll)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	defer ln.Close()

	go func() {
		_ = app.Listener(ln)
	}()
	defer func() { _ = app.Shutdown() }()

	wsURL := "ws://" + ln.Addr().String() + "/api/trips/trip-1/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	hub.Broadcast("trip-1", []byte(`{"latitude":"40.7128","longitude":"-74.0060"}`))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != `{"latitude":"40.7128","longitude":"-74.0060"}` {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestStreamHandlersWebsocketDisconnect(t *testing.T) {
	hub := NewHub(nil)
	app := fiber.New()
	RegisterRoutes(app.Group("/api/trips"), hub, asUser("user-1"), allowAll)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	defer ln.Close()

	go func() {
		_ = app.Listener(ln)
	}()
	defer func() { _ = app.Shutdown() }()

	wsURL := "ws://" + ln.Addr().String() + "/api/trips/trip-2/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	conn.Close()

	// Broadcast after disconnect must not block or panic.
	time.Sleep(20 * time.Millisecond)
	hub.Broadcast("trip-2", []byte("ping"))
	time.Sleep(20 * time.Millisecond)
}
