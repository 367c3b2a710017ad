package trip

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/db"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/geo"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/notify"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/observe"
	"github.com/aghosar/Trail-Tracker-by-HOSAR/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound covers both a missing trip and a trip owned by another user.
	ErrNotFound = errors.New("trip not found")
	// ErrNotActive rejects transitions out of a completed or sos trip.
	ErrNotActive = errors.New("trip is not active")
	// ErrActiveExists rejects starting a second concurrent trip.
	ErrActiveExists = errors.New("an active trip already exists")
	// ErrContactNotFound rejects a start referencing a contact the caller
	// does not own.
	ErrContactNotFound = errors.New("emergency contact not found")
)

const activeCacheTTL = 30 * time.Second

type Service struct {
	db         db.Querier
	dispatcher *notify.Dispatcher
	hub        *stream.Hub
	cache      *redis.Client
}

func NewService(q db.Querier, dispatcher *notify.Dispatcher, hub *stream.Hub, cache *redis.Client) *Service {
	return &Service{db: q, dispatcher: dispatcher, hub: hub, cache: cache}
}

const tripColumns = `
	t.id, t.user_id, t.emergency_contact_id, t.activity_type,
	COALESCE(t.clothing_description,''), COALESCE(t.vehicle_description,''),
	t.start_time, t.end_time, t.status,
	t.last_latitude::text, t.last_longitude::text, t.last_update_time, t.created_at,
	ec.name, ec.phone_number`

func scanTrip(row pgx.Row) (Trip, error) {
	var t Trip
	err := row.Scan(&t.ID, &t.UserID, &t.EmergencyContactID, &t.ActivityType,
		&t.ClothingDescription, &t.VehicleDescription,
		&t.StartTime, &t.EndTime, &t.Status,
		&t.LastLatitude, &t.LastLongitude, &t.LastUpdateTime, &t.CreatedAt,
		&t.ContactName, &t.ContactPhone)
	return t, err
}

// Active returns the caller's active trip projection, or nil when none
// exists. Hits the redis cache first when one is configured.
func (s *Service) Active(ctx context.Context, userID string) (*View, error) {
	if cached := s.cachedActive(ctx, userID); cached != nil {
		return cached, nil
	}

	row := s.db.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM trips t
		JOIN emergency_contacts ec ON ec.id = t.emergency_contact_id
		WHERE t.user_id=$1 AND t.status='active'
	`, userID)
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	view := t.View()
	s.storeActive(ctx, userID, view)
	return &view, nil
}

// Recent returns the caller's latest trips, newest first.
func (s *Service) Recent(ctx context.Context, userID string) ([]View, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tripColumns+`
		FROM trips t
		JOIN emergency_contacts ec ON ec.id = t.emergency_contact_id
		WHERE t.user_id=$1
		ORDER BY t.created_at DESC
		LIMIT 20
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []View
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, t.View())
	}
	return views, nil
}

// Start creates an active trip, records the initial location and notifies the
// emergency contact.
func (s *Service) Start(ctx context.Context, userID string, input StartInput) (View, error) {
	point, err := geo.ParsePoint(input.Latitude, input.Longitude)
	if err != nil {
		return View{}, err
	}

	var contactName, contactPhone string
	err = s.db.QueryRow(ctx, `
		SELECT name, phone_number FROM emergency_contacts
		WHERE id=$1 AND user_id=$2
	`, input.EmergencyContactID, userID).Scan(&contactName, &contactPhone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return View{}, ErrContactNotFound
		}
		return View{}, err
	}

	var hasActive bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM trips WHERE user_id=$1 AND status='active')
	`, userID).Scan(&hasActive)
	if err != nil {
		return View{}, err
	}
	if hasActive {
		return View{}, ErrActiveExists
	}

	now := time.Now()
	t := Trip{
		ID:                  uuid.NewString(),
		UserID:              userID,
		EmergencyContactID:  input.EmergencyContactID,
		ActivityType:        input.ActivityType,
		ClothingDescription: input.ClothingDescription,
		VehicleDescription:  input.VehicleDescription,
		StartTime:           now,
		Status:              StatusActive,
		LastLatitude:        point.StoreLat(),
		LastLongitude:       point.StoreLon(),
		LastUpdateTime:      now,
		ContactName:         contactName,
		ContactPhone:        contactPhone,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, user_id, emergency_contact_id, activity_type,
			clothing_description, vehicle_description, start_time, status,
			last_latitude, last_longitude, last_update_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, t.ID, t.UserID, t.EmergencyContactID, t.ActivityType,
		nullIfEmpty(t.ClothingDescription), nullIfEmpty(t.VehicleDescription),
		t.StartTime, t.Status, t.LastLatitude, t.LastLongitude, t.LastUpdateTime)
	if err := row.Scan(&t.CreatedAt); err != nil {
		return View{}, err
	}

	if err := s.appendHistory(ctx, t.ID, point, now); err != nil {
		return View{}, err
	}

	observe.TripTransitionsTotal.WithLabelValues(StatusActive).Inc()
	s.invalidateActive(ctx, userID)

	s.dispatcher.Dispatch(ctx, notify.EventStart, contactPhone,
		notify.StartMessage(t.ActivityType, t.ClothingDescription, t.VehicleDescription, t.LastLatitude, t.LastLongitude))

	return t.View(), nil
}

// UpdateLocation appends a history row and moves the trip's last-known
// position. Only active trips accept location updates.
func (s *Service) UpdateLocation(ctx context.Context, userID, tripID string, input LocationInput) (View, error) {
	point, err := geo.ParsePoint(input.Latitude, input.Longitude)
	if err != nil {
		return View{}, err
	}

	t, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return View{}, err
	}
	if t.Status != StatusActive {
		return View{}, ErrNotActive
	}

	now := time.Now()
	if err := s.appendHistory(ctx, t.ID, point, now); err != nil {
		return View{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trips
		SET last_latitude=$2, last_longitude=$3, last_update_time=$4
		WHERE id=$1
	`, t.ID, point.StoreLat(), point.StoreLon(), now)
	if err != nil {
		return View{}, err
	}

	t.LastLatitude = point.StoreLat()
	t.LastLongitude = point.StoreLon()
	t.LastUpdateTime = now

	s.invalidateActive(ctx, userID)
	s.broadcast(t.ID, point, now)

	s.dispatcher.Dispatch(ctx, notify.EventUpdate, t.ContactPhone,
		notify.UpdateMessage(t.LastLatitude, t.LastLongitude))

	return t.View(), nil
}

// Complete ends an active trip. Completed and sos trips are terminal.
func (s *Service) Complete(ctx context.Context, userID, tripID string) (View, error) {
	t, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return View{}, err
	}
	if t.Status != StatusActive {
		return View{}, ErrNotActive
	}

	now := time.Now()
	_, err = s.db.Exec(ctx, `
		UPDATE trips SET status='completed', end_time=$2 WHERE id=$1
	`, t.ID, now)
	if err != nil {
		return View{}, err
	}

	t.Status = StatusCompleted
	t.EndTime = &now

	observe.TripTransitionsTotal.WithLabelValues(StatusCompleted).Inc()
	s.invalidateActive(ctx, userID)

	s.dispatcher.Dispatch(ctx, notify.EventComplete, t.ContactPhone,
		notify.CompleteMessage(t.ActivityType))

	return t.View(), nil
}

// SOS marks an active trip as an emergency at the given position and sends
// the urgent notification.
func (s *Service) SOS(ctx context.Context, userID, tripID string, input LocationInput) (View, error) {
	point, err := geo.ParsePoint(input.Latitude, input.Longitude)
	if err != nil {
		return View{}, err
	}

	t, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return View{}, err
	}
	if t.Status != StatusActive {
		return View{}, ErrNotActive
	}

	now := time.Now()
	if err := s.appendHistory(ctx, t.ID, point, now); err != nil {
		return View{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trips
		SET status='sos', last_latitude=$2, last_longitude=$3, last_update_time=$4
		WHERE id=$1
	`, t.ID, point.StoreLat(), point.StoreLon(), now)
	if err != nil {
		return View{}, err
	}

	t.Status = StatusSOS
	t.LastLatitude = point.StoreLat()
	t.LastLongitude = point.StoreLon()
	t.LastUpdateTime = now

	observe.TripTransitionsTotal.WithLabelValues(StatusSOS).Inc()
	s.invalidateActive(ctx, userID)
	s.broadcast(t.ID, point, now)

	s.dispatcher.Dispatch(ctx, notify.EventSOS, t.ContactPhone,
		notify.SOSMessage(t.ActivityType, t.ClothingDescription, t.VehicleDescription, t.LastLatitude, t.LastLongitude))

	return t.View(), nil
}

// History returns the trip's location rows, oldest first.
func (s *Service) History(ctx context.Context, userID, tripID string) ([]LocationUpdate, error) {
	if _, err := s.ownedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, trip_id, latitude::text, longitude::text, recorded_at
		FROM location_updates
		WHERE trip_id=$1
		ORDER BY recorded_at, id
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []LocationUpdate
	for rows.Next() {
		var u LocationUpdate
		if err := rows.Scan(&u.ID, &u.TripID, &u.Latitude, &u.Longitude, &u.RecordedAt); err != nil {
			return nil, err
		}
		u.Latitude = geo.Display(u.Latitude)
		u.Longitude = geo.Display(u.Longitude)
		updates = append(updates, u)
	}
	return updates, nil
}

// Owned reports whether the trip exists and belongs to the caller. The live
// feed route uses it to gate watcher registration.
func (s *Service) Owned(ctx context.Context, userID, tripID string) error {
	_, err := s.ownedTrip(ctx, userID, tripID)
	return err
}

func (s *Service) ownedTrip(ctx context.Context, userID, tripID string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM trips t
		JOIN emergency_contacts ec ON ec.id = t.emergency_contact_id
		WHERE t.id=$1 AND t.user_id=$2
	`, tripID, userID)
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trip{}, ErrNotFound
		}
		return Trip{}, err
	}
	return t, nil
}

// nullIfEmpty maps an absent description to a SQL NULL; the columns are
// nullable and the read side COALESCEs them back to "".
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Service) appendHistory(ctx context.Context, tripID string, point geo.Point, at time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO location_updates (trip_id, latitude, longitude, recorded_at)
		VALUES ($1,$2,$3,$4)
	`, tripID, point.StoreLat(), point.StoreLon(), at)
	if err != nil {
		return err
	}
	observe.LocationUpdatesTotal.Inc()
	return nil
}

func (s *Service) broadcast(tripID string, point geo.Point, at time.Time) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"tripId":     tripID,
		"latitude":   point.DisplayLat(),
		"longitude":  point.DisplayLon(),
		"recordedAt": at,
	})
	s.hub.Broadcast(tripID, payload)
}

func activeCacheKey(userID string) string {
	return "trailtracker:active:" + userID
}

func (s *Service) cachedActive(ctx context.Context, userID string) *View {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, activeCacheKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var view View
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil
	}
	return &view
}

func (s *Service) storeActive(ctx context.Context, userID string, view View) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, activeCacheKey(userID), raw, activeCacheTTL).Err()
}

func (s *Service) invalidateActive(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, activeCacheKey(userID)).Err()
}
