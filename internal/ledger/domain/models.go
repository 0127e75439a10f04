package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentState tracks whether the current session's fee has been settled.
type PaymentState string

const (
	PaymentStateUnpaid PaymentState = "unpaid"
	PaymentStatePaid   PaymentState = "paid"
)

// VehicleID is the composite identity of a vehicle: country code plus
// registration number. Immutable once a session exists.
type VehicleID struct {
	Country        string
	RegistrationNo string
}

// NewVehicleID normalizes the raw country/registration pair.
func NewVehicleID(country, registrationNo string) VehicleID {
	return VehicleID{
		Country:        strings.ToUpper(strings.TrimSpace(country)),
		RegistrationNo: strings.ToUpper(strings.TrimSpace(registrationNo)),
	}
}

// String renders the identity in COUNTRY_PLATE form, the key format used
// by listings and the history archive.
func (v VehicleID) String() string {
	return v.Country + "_" + v.RegistrationNo
}

// Session is one vehicle's continuous stay, from entry until exit.
// PaymentTime and PaidFee are set exactly when State is paid.
type Session struct {
	ID          snowflake.ID
	Vehicle     VehicleID
	Floor       int
	Spot        int
	EntryTime   time.Time
	State       PaymentState
	PaymentTime *time.Time
	PaidFee     *float64
}

// HistoryRecord is the immutable snapshot appended when a session ends.
type HistoryRecord struct {
	SessionID snowflake.ID `json:"session_id"`
	Country   string       `json:"country"`
	Plate     string       `json:"registration_no"`
	EntryTime time.Time    `json:"entry_time"`
	ExitTime  time.Time    `json:"exit_time"`
	Floor     int          `json:"floor"`
	Fee       float64      `json:"fee"`
}
