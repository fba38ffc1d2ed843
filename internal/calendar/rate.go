package calendar

// ResolveRate returns the stored rate of room on d, or the default derived from
// the room's base price when the date has no record.
func (e *Engine) ResolveRate(room Room, d Date) DailyRate {
	if rate, ok := room.DailyRates[d]; ok {
		return rate
	}

	return DailyRate{
		Price:              room.BasePrice,
		OnlinePrice:        room.BasePrice,
		AgencyPrice:        room.BasePrice * e.conf.AgencyFactor,
		Inventory:          e.conf.DefaultInventory,
		StopSale:           false,
		MinStay:            e.conf.DefaultMinStay,
		ClosedForArrival:   false,
		ClosedForDeparture: false,
	}
}

// ChannelPrice picks the price paid through source. OTA and agency prices fall
// back to the base price when unset.
func ChannelPrice(rate DailyRate, source string) float64 {
	switch source {
	case SourceBookingCom, SourceExpedia:
		if rate.OnlinePrice > 0 {
			return rate.OnlinePrice
		}
	case SourceAgency:
		if rate.AgencyPrice > 0 {
			return rate.AgencyPrice
		}
	}

	return rate.Price
}

type QuoteInput struct {
	CheckIn   Date
	CheckOut  Date
	Source    string
	BoardType BoardType
	Extras    []ServiceItem
}

type NightlyCharge struct {
	Date  Date    `json:"date"`
	Price float64 `json:"price"`
}

type Quote struct {
	Nights         int             `json:"nights"`
	RoomTotal      float64         `json:"roomTotal"`
	BoardSurcharge float64         `json:"boardSurcharge"`
	ExtrasTotal    float64         `json:"extrasTotal"`
	Total          float64         `json:"total"`
	PerNight       []NightlyCharge `json:"perNight"`
}

func (e *Engine) QuoteStay(room Room, in QuoteInput) (Quote, error) {
	if !in.CheckIn.Before(in.CheckOut) {
		return Quote{}, &InvalidRangeError{From: in.CheckIn, To: in.CheckOut}
	}

	var q Quote

	for _, d := range stayDates(in.CheckIn, in.CheckOut) {
		price := ChannelPrice(e.ResolveRate(room, d), in.Source)

		q.PerNight = append(q.PerNight, NightlyCharge{Date: d, Price: price})
		q.RoomTotal += price
	}

	q.Nights = len(q.PerNight)
	q.BoardSurcharge = e.BoardSurcharge(in.BoardType) * float64(q.Nights)

	for _, item := range in.Extras {
		q.ExtrasTotal += item.Price
	}

	q.Total = q.RoomTotal + q.BoardSurcharge + q.ExtrasTotal

	return q, nil
}
