package booking

import (
	"time"

	"github.com/avstrong/ratecal/internal/calendar"
)

type QuoteRequest struct {
	RoomID    string                 `json:"roomId"`
	CheckIn   calendar.Date          `json:"checkIn"`
	CheckOut  calendar.Date          `json:"checkOut"`
	Source    string                 `json:"source"`
	BoardType calendar.BoardType     `json:"boardType"`
	Extras    []calendar.ServiceItem `json:"extras"`
}

type BookInput struct {
	GuestName string                 `json:"guestName"`
	RoomID    string                 `json:"roomId"`
	CheckIn   calendar.Date          `json:"checkIn"`
	CheckOut  calendar.Date          `json:"checkOut"`
	Source    string                 `json:"source"`
	BoardType calendar.BoardType     `json:"boardType"`
	Extras    []calendar.ServiceItem `json:"extras"`
	Paid      bool                   `json:"paid"`
	Notes     string                 `json:"notes"`
}

type MoveInput struct {
	RoomID  string        `json:"roomId"`
	CheckIn calendar.Date `json:"checkIn"`
}

type StatusInput struct {
	Status calendar.Status `json:"status"`
}

type BulkRatesInput struct {
	RoomType calendar.RoomType `json:"roomType"`
	From     calendar.Date     `json:"from"`
	To       calendar.Date     `json:"to"`
	// Days lists weekdays to touch, 0 is Sunday. Empty selects every day.
	Days []int `json:"days"`
	// Preset selects weekdays or weekends instead of listing Days.
	Preset DayPreset          `json:"preset,omitempty"`
	Patch  calendar.RatePatch `json:"patch"`
}

type DayPreset string

const (
	PresetWeekdays DayPreset = "weekdays"
	PresetWeekends DayPreset = "weekends"
)

// RateStrategy is a named one-day rate change such as a quick +10%.
type RateStrategy interface {
	calendar.RateAdjuster
	Action() string
}

type QuickActionInput struct {
	RoomType calendar.RoomType `json:"roomType"`
	Date     calendar.Date     `json:"date"`
	Strategy RateStrategy      `json:"-"`
}

type SuggestionRequest struct {
	RoomType calendar.RoomType `json:"roomType"`
	From     calendar.Date     `json:"from"`
	To       calendar.Date     `json:"to"`
	// CompetitorPrice is the average rate of the local comp set, zero when unknown.
	CompetitorPrice float64 `json:"competitorPrice"`
	Language        string  `json:"language"`
}

// PricingContext is what the pricing advisor sees about one room type.
type PricingContext struct {
	HotelName       string
	RoomType        calendar.RoomType
	From            calendar.Date
	To              calendar.Date
	CurrentPrice    float64
	Occupancy       float64
	CompetitorPrice float64
	Language        string
}

type ApplySuggestionInput struct {
	RoomType   calendar.RoomType        `json:"roomType"`
	From       calendar.Date            `json:"from"`
	To         calendar.Date            `json:"to"`
	Action     calendar.SuggestedAction `json:"action"`
	Percentage float64                  `json:"percentage"`
}

type RoomRates struct {
	RoomID string                               `json:"roomId"`
	Rates  map[calendar.Date]calendar.DailyRate `json:"rates"`
}

// RateUpdate is pushed to the channel manager after rates of a room type change.
type RateUpdate struct {
	HotelID   string            `json:"hotelId"`
	RoomType  calendar.RoomType `json:"roomType"`
	Action    string            `json:"action"`
	User      string            `json:"user"`
	Rooms     []RoomRates       `json:"rooms"`
	CreatedAt time.Time         `json:"createdAt"`
}
