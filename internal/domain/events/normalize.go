package events

import (
	"strings"

	"github.com/okian/tourintel/internal/domain/model"
)

// Normalize converts one raw provider record into a canonical event.
// It accepts both provider-nested payloads (_embedded.venues,
// dates.start) and pre-flattened records (city, venue, local_date).
// Records without a name are rejected.
func Normalize(raw map[string]any) (model.Event, bool) {
	name := stringField(raw, "name")
	if name == "" {
		return model.Event{}, false
	}
	return model.Event{
		ID:        stringField(raw, "id"),
		Name:      name,
		LocalDate: extractLocalDate(raw),
		City:      ExtractCity(raw),
		Venue:     ExtractVenue(raw),
		Capacity:  extractCapacity(raw),
		URL:       stringField(raw, "url"),
		Raw:       raw,
	}, true
}

// ExtractCity reads the event city from either record shape.
func ExtractCity(raw map[string]any) string {
	if city := stringField(raw, "city"); city != "" {
		return city
	}
	return stringField(mapField(firstVenue(raw), "city"), "name")
}

// ExtractVenue reads the venue name from either record shape.
func ExtractVenue(raw map[string]any) string {
	if venue := stringField(raw, "venue"); venue != "" {
		return venue
	}
	return stringField(firstVenue(raw), "name")
}

// ExtractCountry reads the event country from either record shape,
// preferring the human readable name over the two-letter code.
func ExtractCountry(raw map[string]any) string {
	if country := stringField(raw, "country"); country != "" {
		return country
	}
	country := mapField(firstVenue(raw), "country")
	if name := stringField(country, "name"); name != "" {
		return name
	}
	return stringField(country, "countryCode")
}

// ExtractInventoryPressure reads the optional 0-100 inventory pressure
// signal some ticketing payloads carry at the top level.
func ExtractInventoryPressure(raw map[string]any) (int, bool) {
	if v, ok := numberField(raw, "inventory_pressure"); ok {
		return int(v), true
	}
	return 0, false
}

// extractLocalDate returns the event date as YYYY-MM-DD, or "" when
// the payload carries no usable date.
func extractLocalDate(raw map[string]any) string {
	if date := stringField(raw, "local_date"); date != "" {
		return date
	}
	start := mapField(mapField(raw, "dates"), "start")
	if date := stringField(start, "localDate"); date != "" {
		return date
	}
	if ts := stringField(start, "dateTime"); len(ts) >= 10 {
		return ts[:10]
	}
	return ""
}

// extractCapacity reads venue capacity from the top-level keys only.
// Nested venue objects do not expose capacity reliably enough to use.
func extractCapacity(raw map[string]any) int {
	for _, key := range []string{"capacity", "venue_capacity"} {
		if v, ok := numberField(raw, key); ok && v > 0 {
			return int(v)
		}
	}
	return 0
}

func firstVenue(raw map[string]any) map[string]any {
	embedded := mapField(raw, "_embedded")
	venues, ok := embedded["venues"].([]any)
	if !ok || len(venues) == 0 {
		return nil
	}
	venue, _ := venues[0].(map[string]any)
	return venue
}

func stringField(raw map[string]any, key string) string {
	v, ok := raw[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func numberField(raw map[string]any, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func mapField(raw map[string]any, key string) map[string]any {
	v, _ := raw[key].(map[string]any)
	return v
}
