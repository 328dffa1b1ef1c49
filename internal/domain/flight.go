package domain

import "time"

type Flight struct {
	ID            int64     `json:"id"`
	DepartureCity string    `json:"departure_city"`
	DepartureCode string    `json:"departure_code"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalCity   string    `json:"arrival_city"`
	ArrivalCode   string    `json:"arrival_code"`
	ArrivalTime   time.Time `json:"arrival_time"`
	BasePrice     int64     `json:"base_price"`
	AirplaneID    int64     `json:"airplane_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "ECONOMY"
	SeatClassBusiness SeatClass = "BUSINESS"
	SeatClassFirst    SeatClass = "FIRST"
)

// multiplier in tenths so prices stay in integer arithmetic.
var classMultiplier = map[SeatClass]int64{
	SeatClassEconomy:  10,
	SeatClassBusiness: 15,
	SeatClassFirst:    25,
}

func (c SeatClass) Valid() bool {
	_, ok := classMultiplier[c]
	return ok
}

// Price returns base scaled by the class multiplier, rounded half up to a whole currency unit.
func (c SeatClass) Price(base int64) (int64, error) {
	m, ok := classMultiplier[c]
	if !ok {
		return 0, Errorf(KindValidation, "unknown seat class %q", c)
	}
	if base < 0 {
		return 0, Errorf(KindValidation, "negative base price %d", base)
	}
	return (base*m + 5) / 10, nil
}

// FlightSeat is one physical seat on one flight. Booked is true iff a SUCCESS ticket references it.
type FlightSeat struct {
	ID         int64     `json:"id"`
	FlightID   int64     `json:"flight_id"`
	SeatNumber string    `json:"seat_number"`
	Class      SeatClass `json:"class"`
	Booked     bool      `json:"booked"`
	UpdatedAt  time.Time `json:"updated_at"`
}
