package picker

import (
	"strings"

	"location_saver_backend/internal/geocoding"
)

// State is the phase of the selection flow.
type State string

const (
	StateSelecting         State = "selecting"
	StateAnnotatingDetails State = "annotatingDetails"
)

// Category classifies a saved address.
type Category string

const (
	CategoryHome             Category = "Home"
	CategoryOffice           Category = "Office"
	CategoryFriendsAndFamily Category = "FriendsAndFamily"
)

// Categories lists the selectable categories in display order.
var Categories = []Category{CategoryHome, CategoryOffice, CategoryFriendsAndFamily}

func (c Category) Valid() bool {
	switch c {
	case CategoryHome, CategoryOffice, CategoryFriendsAndFamily:
		return true
	}
	return false
}

// Label is the human-readable name shown next to the category icon.
func (c Category) Label() string {
	if c == CategoryFriendsAndFamily {
		return "Friends & Family"
	}
	return string(c)
}

// Details is the user-supplied part of an address.
type Details struct {
	HouseNumber     string   `json:"houseNumber"`
	ApartmentOrRoad string   `json:"apartmentOrRoad"`
	Category        Category `json:"category,omitempty"`
}

// Complete reports whether all three fields are filled in.
func (d Details) Complete() bool {
	return strings.TrimSpace(d.HouseNumber) != "" &&
		strings.TrimSpace(d.ApartmentOrRoad) != "" &&
		d.Category.Valid()
}

// DetailsPatch updates the fields that are non-nil.
type DetailsPatch struct {
	HouseNumber     *string   `json:"houseNumber,omitempty" validate:"omitempty,max=64"`
	ApartmentOrRoad *string   `json:"apartmentOrRoad,omitempty" validate:"omitempty,max=255"`
	Category        *Category `json:"category,omitempty" validate:"omitempty,addresscategory"`
}

// Snapshot is a read-only view of a machine.
type Snapshot struct {
	State      State                 `json:"state"`
	Coordinate *geocoding.Coordinate `json:"coordinate"`
	Label      string                `json:"label"`
	Resolving  bool                  `json:"resolving"`
	Details    Details               `json:"details"`
	CanSave    bool                  `json:"canSave"`
	MapCenter  geocoding.Coordinate  `json:"mapCenter"`
}

// DefaultMapCenter is where the map opens before anything was selected.
var DefaultMapCenter = geocoding.Coordinate{Latitude: 51.505, Longitude: -0.09}
