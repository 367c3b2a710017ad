package contact

import (
	"context"
	"errors"

	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound covers both a missing contact and a contact owned by someone
// else. The two cases are indistinguishable to the caller.
var ErrNotFound = errors.New("contact not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, userID string) ([]EmergencyContact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, phone_number, created_at
		FROM emergency_contacts WHERE user_id=$1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []EmergencyContact
	for rows.Next() {
		var c EmergencyContact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func (s *Service) Create(ctx context.Context, userID, name, phoneNumber string) (EmergencyContact, error) {
	c := EmergencyContact{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		PhoneNumber: phoneNumber,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO emergency_contacts (id, user_id, name, phone_number)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, c.ID, c.UserID, c.Name, c.PhoneNumber)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return EmergencyContact{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (EmergencyContact, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, phone_number, created_at
		FROM emergency_contacts WHERE id=$1 AND user_id=$2
	`, id, userID)
	var c EmergencyContact
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EmergencyContact{}, ErrNotFound
		}
		return EmergencyContact{}, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, patch EmergencyContact) (EmergencyContact, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return EmergencyContact{}, err
	}
	if patch.Name != "" {
		c.Name = patch.Name
	}
	if patch.PhoneNumber != "" {
		c.PhoneNumber = patch.PhoneNumber
	}

	_, err = s.db.Exec(ctx, `
		UPDATE emergency_contacts
		SET name=$3, phone_number=$4
		WHERE id=$1 AND user_id=$2
	`, c.ID, userID, c.Name, c.PhoneNumber)
	if err != nil {
		return EmergencyContact{}, err
	}
	return c, nil
}

// Delete removes a contact. Postgres cascades the delete to the contact's
// trips and their location history.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM emergency_contacts WHERE id=$1 AND user_id=$2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
