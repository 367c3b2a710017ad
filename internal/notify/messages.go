package notify

import "github.com/aghosar/Trail-Tracker-by-HOSAR/internal/geo"

// Event names a trip lifecycle transition that produces a notification.
type Event string

const (
	EventStart    Event = "start"
	EventUpdate   Event = "location_update"
	EventComplete Event = "complete"
	EventSOS      Event = "sos"
)

// StartMessage announces a new trip to the emergency contact.
func StartMessage(activity, clothing, vehicle, lat, lon string) string {
	msg := "Trail Tracker: a " + activity + " trip has started."
	msg += describeAppearance(clothing, vehicle)
	return msg + " Current location: " + geo.MapLink(lat, lon)
}

// UpdateMessage carries only the latest position.
func UpdateMessage(lat, lon string) string {
	return "Trail Tracker location update: " + geo.MapLink(lat, lon)
}

// CompleteMessage closes out a trip. It carries no coordinates.
func CompleteMessage(activity string) string {
	return "Trail Tracker: the " + activity + " trip is complete. No further updates will be sent."
}

// SOSMessage is the urgent variant. Clothing and vehicle descriptions are
// always included when present so responders can identify the person.
func SOSMessage(activity, clothing, vehicle, lat, lon string) string {
	msg := "EMERGENCY SOS: immediate help needed on a " + activity + " trip."
	msg += describeAppearance(clothing, vehicle)
	return msg + " Last known location: " + geo.MapLink(lat, lon)
}

func describeAppearance(clothing, vehicle string) string {
	var out string
	if clothing != "" {
		out += " Wearing: " + clothing + "."
	}
	if vehicle != "" {
		out += " Vehicle: " + vehicle + "."
	}
	return out
}
