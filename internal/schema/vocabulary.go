package schema

import "strings"

// Controlled vocabularies for set-valued fields. Imported tokens are folded
// onto these terms by case-insensitive match or substring containment.
var (
	BedroomVocabulary = []string{"Studio", "1BR", "2BR", "3BR", "4BR+"}

	NeighborhoodVocabulary = []string{
		"Williamsburg", "Greenpoint", "Bushwick", "Park Slope", "Brooklyn Heights", "DUMBO",
		"Upper West Side", "Upper East Side", "Harlem", "Chelsea", "West Village", "East Village",
		"SoHo", "Tribeca", "Financial District", "Astoria", "Long Island City",
	}

	AmenityVocabulary = []string{
		"Doorman", "Elevator", "Laundry In Unit", "Dishwasher", "Outdoor Space", "Gym",
		"Parking", "Pet Friendly", "Roof Deck", "Storage", "Central Air",
	}

	VibeVocabulary = []string{
		"Quiet", "Trendy", "Family Friendly", "Nightlife", "Walkable", "Green", "Artsy", "Upscale",
	}

	PriorityVocabulary = []string{
		"Price", "Location", "Commute", "Space", "Light", "Schools", "Safety", "Amenities",
	}
)

// Canonical client statuses.
const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusPlaced   = "placed"
	StatusArchived = "archived"
)

// CanonicalStatuses lists every status a stored client may carry.
var CanonicalStatuses = []string{StatusActive, StatusPaused, StatusPlaced, StatusArchived}

// StatusSynonyms maps CRM pipeline stages (lower-case) to a canonical status.
var StatusSynonyms = map[string]string{
	"lead":           StatusActive,
	"new":            StatusActive,
	"open":           StatusActive,
	"qualified":      StatusActive,
	"prospect":       StatusActive,
	"in progress":    StatusActive,
	"on hold":        StatusPaused,
	"nurture":        StatusPaused,
	"closed won":     StatusPlaced,
	"won":            StatusPlaced,
	"converted":      StatusPlaced,
	"closed":         StatusPlaced,
	"lost":           StatusArchived,
	"closed lost":    StatusArchived,
	"inactive":       StatusArchived,
	"unqualified":    StatusArchived,
	"dead":           StatusArchived,
	"do not contact": StatusArchived,
}

// NormalizeStatus folds free-text status onto a canonical status.
// Returns false when the text is not recognized.
func NormalizeStatus(s string) (string, bool) {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return "", false
	}

	for _, status := range CanonicalStatuses {
		if s == status {
			return status, true
		}
	}

	if status, ok := StatusSynonyms[s]; ok {
		return status, true
	}

	return "", false
}

// IsCanonicalStatus reports whether s is one of CanonicalStatuses.
func IsCanonicalStatus(s string) bool {
	for _, status := range CanonicalStatuses {
		if s == status {
			return true
		}
	}
	return false
}
