package calendar

import (
	"maps"
	"slices"
	"time"
)

type RoomType string

const (
	Standard RoomType = "Standard"
	Deluxe   RoomType = "Deluxe"
	Suite    RoomType = "Suite"
	Villa    RoomType = "Garden Villa"
)

func (t RoomType) Valid() bool {
	switch t {
	case Standard, Deluxe, Suite, Villa:
		return true
	}

	return false
}

type BoardType string

const (
	RoomOnly        BoardType = "Room Only"
	BedAndBreakfast BoardType = "Bed & Breakfast"
	HalfBoard       BoardType = "Half Board"
	FullBoard       BoardType = "Full Board"
	AllInclusive    BoardType = "All Inclusive"
)

// DefaultBoardTypes are offered by rooms that do not list their own.
var DefaultBoardTypes = []BoardType{RoomOnly, BedAndBreakfast}

// Booking sources that select a channel price. Any other source pays the base price.
const (
	SourceDirect     = "Direct"
	SourceBookingCom = "Booking.com"
	SourceExpedia    = "Expedia"
	SourceAgency     = "Agency"
)

// Labels written to PriceChangeLog.Action.
const (
	ActionManualUpdate = "Manual Update"
	ActionBulkUpdate   = "Bulk Update"
	ActionQuick        = "Quick Action"
)

type DailyRate struct {
	Price              float64 `json:"price"                        bson:"price"`
	OnlinePrice        float64 `json:"onlinePrice,omitempty"        bson:"onlinePrice,omitempty"`
	AgencyPrice        float64 `json:"agencyPrice,omitempty"        bson:"agencyPrice,omitempty"`
	Inventory          int     `json:"inventory"                    bson:"inventory"`
	StopSale           bool    `json:"stopSale"                     bson:"stopSale"`
	MinStay            int     `json:"minStay,omitempty"            bson:"minStay,omitempty"`
	ClosedForArrival   bool    `json:"closedForArrival,omitempty"   bson:"closedForArrival,omitempty"`
	ClosedForDeparture bool    `json:"closedForDeparture,omitempty" bson:"closedForDeparture,omitempty"`
}

type Room struct {
	ID         string             `json:"id"                   bson:"id"`
	Number     string             `json:"number"               bson:"number"`
	Type       RoomType           `json:"type"                 bson:"type"`
	Floor      int                `json:"floor"                bson:"floor"`
	BasePrice  float64            `json:"basePrice"            bson:"basePrice"`
	BoardTypes []BoardType        `json:"boardTypes,omitempty" bson:"boardTypes,omitempty"`
	DailyRates map[Date]DailyRate `json:"dailyRates,omitempty" bson:"dailyRates,omitempty"`
}

// OffersBoard reports whether b can be sold with the room.
func (r Room) OffersBoard(b BoardType) bool {
	if len(r.BoardTypes) == 0 {
		return slices.Contains(DefaultBoardTypes, b)
	}

	return slices.Contains(r.BoardTypes, b)
}

func (r Room) clone() Room {
	r.BoardTypes = slices.Clone(r.BoardTypes)
	r.DailyRates = maps.Clone(r.DailyRates)

	return r
}

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// ServiceItem is an ad-hoc charge on a reservation folio.
type ServiceItem struct {
	ID    string  `json:"id"    bson:"id"`
	Name  string  `json:"name"  bson:"name"`
	Price float64 `json:"price" bson:"price"`
	Date  Date    `json:"date"  bson:"date"`
}

type Reservation struct {
	ID        string        `json:"id"                  bson:"id"`
	GuestName string        `json:"guestName"           bson:"guestName"`
	RoomID    string        `json:"roomId"              bson:"roomId"`
	CheckIn   Date          `json:"checkIn"             bson:"checkIn"`
	CheckOut  Date          `json:"checkOut"            bson:"checkOut"`
	Source    string        `json:"source"              bson:"source"`
	Status    Status        `json:"status"              bson:"status"`
	Amount    float64       `json:"amount"              bson:"amount"`
	Paid      bool          `json:"paid"                bson:"paid"`
	BoardType BoardType     `json:"boardType,omitempty" bson:"boardType,omitempty"`
	Extras    []ServiceItem `json:"extras,omitempty"    bson:"extras,omitempty"`
	Notes     string        `json:"notes,omitempty"     bson:"notes,omitempty"`
}

func (r Reservation) Nights() int {
	return Nights(r.CheckIn, r.CheckOut)
}

func (r Reservation) Clone() Reservation {
	r.Extras = slices.Clone(r.Extras)

	return r
}

// PriceChangeLog is one audit entry for a changed base price on one room and date.
type PriceChangeLog struct {
	TargetDate Date      `json:"targetDate"`
	RoomType   RoomType  `json:"roomType"`
	RoomID     string    `json:"roomId"`
	OldPrice   float64   `json:"oldPrice"`
	NewPrice   float64   `json:"newPrice"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	User       string    `json:"user"`
}

// Property is the persisted snapshot of one hotel. Version is bumped on every save.
type Property struct {
	ID           string        `json:"id"           bson:"id"`
	Name         string        `json:"name"         bson:"name"`
	Rooms        []Room        `json:"rooms"        bson:"rooms"`
	Reservations []Reservation `json:"reservations" bson:"reservations"`
	Version      int64         `json:"version"      bson:"version"`
}

func (p *Property) Clone() *Property {
	out := *p
	out.Rooms = make([]Room, len(p.Rooms))
	out.Reservations = make([]Reservation, len(p.Reservations))

	for i, room := range p.Rooms {
		out.Rooms[i] = room.clone()
	}

	for i, res := range p.Reservations {
		out.Reservations[i] = res.Clone()
	}

	return &out
}

func (p *Property) Room(id string) (Room, bool) {
	return findRoom(p.Rooms, id)
}

func (p *Property) Reservation(id string) (Reservation, bool) {
	idx := slices.IndexFunc(p.Reservations, func(r Reservation) bool { return r.ID == id })
	if idx < 0 {
		return Reservation{}, false
	}

	return p.Reservations[idx], true
}

// RoomsOfType returns the rooms of type t in property order.
func RoomsOfType(rooms []Room, t RoomType) []Room {
	var out []Room

	for _, r := range rooms {
		if r.Type == t {
			out = append(out, r)
		}
	}

	return out
}

// ReplaceReservation returns a copy of reservations with res swapped in by ID,
// or appended when no reservation has that ID yet.
func ReplaceReservation(reservations []Reservation, res Reservation) []Reservation {
	out := slices.Clone(reservations)

	idx := slices.IndexFunc(out, func(r Reservation) bool { return r.ID == res.ID })
	if idx < 0 {
		return append(out, res)
	}

	out[idx] = res

	return out
}

func findRoom(rooms []Room, id string) (Room, bool) {
	idx := slices.IndexFunc(rooms, func(r Room) bool { return r.ID == id })
	if idx < 0 {
		return Room{}, false
	}

	return rooms[idx], true
}
