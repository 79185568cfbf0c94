// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation reaches
// CONFIRMED. It carries enough for downstream consumers (itinerary
// mail, analytics, operations dashboards) to act without querying the
// primary database.
type ReservationConfirmedEvent struct {
    ReservationID  uint64   `json:"reservation_id"`
    ConfirmationNo string   `json:"confirmation_no"`
    CustomerID     uint64   `json:"customer_id"`
    FlightID       uint64   `json:"flight_id"`
    FlightNumber   string   `json:"flight_number"`
    Origin         string   `json:"origin"`
    Destination    string   `json:"destination"`
    DepartsAt      string   `json:"departs_at"`
    ArrivesAt      string   `json:"arrives_at"`
    SeatNumbers    []string `json:"seats"`
    TotalFareCents uint32   `json:"total_fare_cents"`
    ConfirmedAt    string   `json:"confirmed_at"`
}
