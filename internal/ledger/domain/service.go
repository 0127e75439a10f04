package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	RegisterEntry(ctx context.Context, req EntryRequest) (*EntryResponse, error)
	GetQuote(ctx context.Context, country, registrationNo string) (*Quote, error)
	Pay(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
	RegisterExit(ctx context.Context, country, registrationNo string) (*ExitResponse, error)
	ChangeFloor(ctx context.Context, req ChangeFloorRequest) (*ChangeFloorResponse, error)
	ListActive(ctx context.Context) ([]ActiveSession, error)
	SearchActive(ctx context.Context, query string) ([]ActiveSession, error)
	ListHistory(ctx context.Context) (map[string][]HistoryRecord, error)
	SetLockdown(ctx context.Context, enabled bool) error
	Lockdown(ctx context.Context) bool
}

// Archiver receives completed sessions for durable storage. The in-memory
// history stays authoritative; archiving is best effort.
type Archiver interface {
	ArchiveRecord(ctx context.Context, record HistoryRecord) error
}

type EntryRequest struct {
	Country        string `json:"country"`
	RegistrationNo string `json:"registration_no"`
	Floor          int    `json:"floor"`
}

type EntryResponse struct {
	SessionID      string    `json:"session_id"`
	Country        string    `json:"country"`
	RegistrationNo string    `json:"registration_no"`
	Floor          int       `json:"floor"`
	Spot           int       `json:"spot"`
	EntryTime      time.Time `json:"entry_time"`
}

type Quote struct {
	Country        string  `json:"country"`
	RegistrationNo string  `json:"registration_no"`
	Minutes        int64   `json:"minutes"`
	Fee            float64 `json:"fee"`
}

type PaymentRequest struct {
	Country        string  `json:"country"`
	RegistrationNo string  `json:"registration_no"`
	Amount         float64 `json:"amount"`
}

type PaymentResponse struct {
	Country        string    `json:"country"`
	RegistrationNo string    `json:"registration_no"`
	Fee            float64   `json:"fee"`
	PaymentTime    time.Time `json:"payment_time"`
}

type ChangeFloorRequest struct {
	Country        string `json:"country"`
	RegistrationNo string `json:"registration_no"`
	NewFloor       int    `json:"new_floor"`
}

type ChangeFloorResponse struct {
	Country        string `json:"country"`
	RegistrationNo string `json:"registration_no"`
	Floor          int    `json:"floor"`
	Spot           int    `json:"spot"`
}

type ExitResponse struct {
	Country        string    `json:"country"`
	RegistrationNo string    `json:"registration_no"`
	Floor          int       `json:"floor"`
	Spot           int       `json:"spot"`
	Fee            float64   `json:"fee"`
	ExitTime       time.Time `json:"exit_time"`
}

// ActiveSession is the read-only projection of a parked vehicle.
type ActiveSession struct {
	SessionID      string     `json:"session_id"`
	Country        string     `json:"country"`
	RegistrationNo string     `json:"registration_no"`
	Floor          int        `json:"floor"`
	Spot           int        `json:"spot"`
	EntryTime      time.Time  `json:"entry_time"`
	Paid           bool       `json:"paid"`
	PaymentTime    *time.Time `json:"payment_time,omitempty"`
	PaidFee        *float64   `json:"paid_fee,omitempty"`
}

var (
	// Validation
	ErrInvalidPlate = errors.New("invalid_registration_no")
	ErrInvalidFloor = errors.New("invalid_floor")

	// Not found
	ErrVehicleNotFound = errors.New("vehicle_not_found")

	// Conflict
	ErrAlreadyParked = errors.New("vehicle_already_parked")
	ErrAlreadyPaid   = errors.New("session_already_paid")

	// Capacity
	ErrLotFull   = errors.New("lot_full")
	ErrFloorFull = errors.New("floor_full")

	// Payment
	ErrNotPaid             = errors.New("session_not_paid")
	ErrInsufficientPayment = errors.New("insufficient_payment")
	ErrPaymentExpired      = errors.New("payment_expired")

	// Admission gate
	ErrLotClosed = errors.New("lot_closed")
)
