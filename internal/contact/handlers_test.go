package contact

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func asUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func TestContactHandlersCRUD(t *testing.T) {
	mock := newMock(t)

	app := fiber.New()
	RegisterRoutes(app.Group("/api/emergency-contacts"), NewService(mock), asUser("user-1"))

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO emergency_contacts`).
		WithArgs(pgxmock.AnyArg(), "user-1", "John Doe", "+1234567890").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	body, _ := json.Marshal(map[string]string{"name": "John Doe", "phoneNumber": "+1234567890"})
	req := httptest.NewRequest(http.MethodPost, "/api/emergency-contacts/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %v %d", err, resp.StatusCode)
	}

	var created EmergencyContact
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "John Doe" || created.PhoneNumber != "+1234567890" {
		t.Fatalf("unexpected created contact: %+v", created)
	}

	mock.ExpectQuery(`SELECT id, user_id, name, phone_number, created_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "phone_number", "created_at"}).
			AddRow(created.ID, "user-1", "John Doe", "+1234567890", createdAt))

	req = httptest.NewRequest(http.MethodGet, "/api/emergency-contacts/", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}

	mock.ExpectQuery(`SELECT id, user_id, name, phone_number, created_at`).
		WithArgs(created.ID, "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "phone_number", "created_at"}).
			AddRow(created.ID, "user-1", "John Doe", "+1234567890", createdAt))
	mock.ExpectExec(`UPDATE emergency_contacts`).
		WithArgs(created.ID, "user-1", "Jane Doe", "+1234567890").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	body, _ = json.Marshal(map[string]string{"name": "Jane Doe"})
	req = httptest.NewRequest(http.MethodPut, "/api/emergency-contacts/"+created.ID, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: %v", err)
	}

	mock.ExpectExec(`DELETE FROM emergency_contacts`).
		WithArgs(created.ID, "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	req = httptest.NewRequest(http.MethodDelete, "/api/emergency-contacts/"+created.ID, nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status: %v", err)
	}
	var deleted map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&deleted); err != nil || !deleted["success"] {
		t.Fatalf("expected success body, got %v (%v)", deleted, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestContactHandlersValidation(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api/emergency-contacts"), NewService(nil), asUser("user-1"))

	for _, body := range []string{`{}`, `{"name":"John"}`, `{"phoneNumber":"+1"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/emergency-contacts/", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400 for body %s, got %d", body, resp.StatusCode)
		}
	}
}

func TestContactHandlersNotFound(t *testing.T) {
	mock := newMock(t)

	app := fiber.New()
	RegisterRoutes(app.Group("/api/emergency-contacts"), NewService(mock), asUser("user-2"))

	mock.ExpectQuery(`SELECT id, user_id, name, phone_number, created_at`).
		WithArgs("contact-1", "user-2").
		WillReturnError(pgx.ErrNoRows)

	body := []byte(`{"name":"Jane"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/emergency-contacts/contact-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on foreign update, got %d", resp.StatusCode)
	}

	mock.ExpectExec(`DELETE FROM emergency_contacts`).
		WithArgs("contact-1", "user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	req = httptest.NewRequest(http.MethodDelete, "/api/emergency-contacts/contact-1", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on foreign delete, got %d", resp.StatusCode)
	}
}
