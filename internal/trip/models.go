package trip

import (
	"time"

	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/geo"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusSOS       = "sos"
)

// Trip is the persisted row plus the joined contact columns. Coordinates are
// held as 8-decimal strings exactly as stored.
type Trip struct {
	ID                  string
	UserID              string
	EmergencyContactID  string
	ActivityType        string
	ClothingDescription string
	VehicleDescription  string
	StartTime           time.Time
	EndTime             *time.Time
	Status              string
	LastLatitude        string
	LastLongitude       string
	LastUpdateTime      time.Time
	CreatedAt           time.Time
	ContactName         string
	ContactPhone        string
}

// ContactInfo is the contact slice embedded in trip projections.
type ContactInfo struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// View is the client-facing projection. Coordinates are rounded to 4
// fractional digits for display; storage keeps the full 8.
type View struct {
	ID                  string      `json:"id"`
	ActivityType        string      `json:"activityType"`
	ClothingDescription string      `json:"clothingDescription,omitempty"`
	VehicleDescription  string      `json:"vehicleDescription,omitempty"`
	Status              string      `json:"status"`
	StartTime           time.Time   `json:"startTime"`
	EndTime             *time.Time  `json:"endTime,omitempty"`
	LastLatitude        string      `json:"lastLatitude"`
	LastLongitude       string      `json:"lastLongitude"`
	LastUpdateTime      time.Time   `json:"lastUpdateTime"`
	CreatedAt           time.Time   `json:"createdAt"`
	Contact             ContactInfo `json:"contact"`
}

func (t Trip) View() View {
	return View{
		ID:                  t.ID,
		ActivityType:        t.ActivityType,
		ClothingDescription: t.ClothingDescription,
		VehicleDescription:  t.VehicleDescription,
		Status:              t.Status,
		StartTime:           t.StartTime,
		EndTime:             t.EndTime,
		LastLatitude:        geo.Display(t.LastLatitude),
		LastLongitude:       geo.Display(t.LastLongitude),
		LastUpdateTime:      t.LastUpdateTime,
		CreatedAt:           t.CreatedAt,
		Contact:             ContactInfo{Name: t.ContactName, PhoneNumber: t.ContactPhone},
	}
}

// LocationUpdate is one row of the append-only location history.
type LocationUpdate struct {
	ID         int64     `json:"id"`
	TripID     string    `json:"tripId"`
	Latitude   string    `json:"latitude"`
	Longitude  string    `json:"longitude"`
	RecordedAt time.Time `json:"recordedAt"`
}

type StartInput struct {
	EmergencyContactID  string `json:"emergencyContactId"`
	ActivityType        string `json:"activityType"`
	ClothingDescription string `json:"clothingDescription"`
	VehicleDescription  string `json:"vehicleDescription"`
	Latitude            string `json:"latitude"`
	Longitude           string `json:"longitude"`
}

type LocationInput struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}
