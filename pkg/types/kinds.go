package types

import (
	"fmt"
	"sort"
)

// Kind names. These are the class names written under __class__ and used as
// the first half of composite keys.
const (
	KindBaseModel = "BaseModel"
	KindUser      = "User"
	KindState     = "State"
	KindCity      = "City"
	KindAmenity   = "Amenity"
	KindPlace     = "Place"
	KindReview    = "Review"
)

// kindFactories maps each kind name to a constructor of its zero value.
var kindFactories = map[string]func() Record{
	KindBaseModel: func() Record { return &BaseModel{} },
	KindUser:      func() Record { return &User{} },
	KindState:     func() Record { return &State{} },
	KindCity:      func() Record { return &City{} },
	KindAmenity:   func() Record { return &Amenity{} },
	KindPlace:     func() Record { return &Place{} },
	KindReview:    func() Record { return &Review{} },
}

// Kinds returns the known kind names in sorted order.
func Kinds() []string {
	names := make([]string, 0, len(kindFactories))
	for name := range kindFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsKind reports whether name is a known kind.
func IsKind(name string) bool {
	_, ok := kindFactories[name]
	return ok
}

// NewRecord returns the zero value of the named kind.
// Returns ErrUnknownKind if the name is not registered.
func NewRecord(kind string) (Record, error) {
	factory, ok := kindFactories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return factory(), nil
}

// User is an account of the service.
type User struct {
	BaseModel
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (u *User) Kind() string { return KindUser }

func (u *User) attributes() []attribute {
	return []attribute{
		{"email", &u.Email},
		{"password", &u.Password},
		{"first_name", &u.FirstName},
		{"last_name", &u.LastName},
	}
}

// State is a state or region containing cities.
type State struct {
	BaseModel
	Name string
}

func (s *State) Kind() string { return KindState }

func (s *State) attributes() []attribute {
	return []attribute{{"name", &s.Name}}
}

// City belongs to a State through StateID.
type City struct {
	BaseModel
	StateID string
	Name    string
}

func (c *City) Kind() string { return KindCity }

func (c *City) attributes() []attribute {
	return []attribute{
		{"state_id", &c.StateID},
		{"name", &c.Name},
	}
}

// Amenity is a feature a Place may offer.
type Amenity struct {
	BaseModel
	Name string
}

func (a *Amenity) Kind() string { return KindAmenity }

func (a *Amenity) attributes() []attribute {
	return []attribute{{"name", &a.Name}}
}

// Place is a rental listed by a User in a City. Numeric attributes are kept
// as the strings they were entered with.
type Place struct {
	BaseModel
	CityID          string
	UserID          string
	Name            string
	Description     string
	NumberRooms     string
	NumberBathrooms string
	MaxGuest        string
	PriceByNight    string
	Latitude        string
	Longitude       string
}

func (p *Place) Kind() string { return KindPlace }

func (p *Place) attributes() []attribute {
	return []attribute{
		{"city_id", &p.CityID},
		{"user_id", &p.UserID},
		{"name", &p.Name},
		{"description", &p.Description},
		{"number_rooms", &p.NumberRooms},
		{"number_bathrooms", &p.NumberBathrooms},
		{"max_guest", &p.MaxGuest},
		{"price_by_night", &p.PriceByNight},
		{"latitude", &p.Latitude},
		{"longitude", &p.Longitude},
	}
}

// Review is a User's text about a Place.
type Review struct {
	BaseModel
	PlaceID string
	UserID  string
	Text    string
}

func (r *Review) Kind() string { return KindReview }

func (r *Review) attributes() []attribute {
	return []attribute{
		{"place_id", &r.PlaceID},
		{"user_id", &r.UserID},
		{"text", &r.Text},
	}
}
