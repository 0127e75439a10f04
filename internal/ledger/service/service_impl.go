package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/carpark/internal/allocation"
	"github.com/smallbiznis/carpark/internal/clock"
	"github.com/smallbiznis/carpark/internal/config"
	ledgerdomain "github.com/smallbiznis/carpark/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/carpark/internal/observability/metrics"
	"github.com/smallbiznis/carpark/internal/plate"
	"github.com/smallbiznis/carpark/internal/tariff"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Payment comparisons tolerate float noise from JSON round-trips.
const amountEpsilon = 1e-9

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Validator  *plate.Validator
	Calculator *tariff.Calculator
	Archiver   ledgerdomain.Archiver `optional:"true"`
	ObsMetrics *obsmetrics.Metrics   `optional:"true"`
}

// Service owns every active session and the completed-session history.
// One RWMutex serializes all mutations, which is what keeps the per-floor
// spot sets disjoint and each vehicle down to a single active session.
type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	validator  *plate.Validator
	calculator *tariff.Calculator
	archiver   ledgerdomain.Archiver
	obsMetrics *obsmetrics.Metrics

	table         allocation.Table
	paymentWindow time.Duration

	mu        sync.RWMutex
	sessions  map[ledgerdomain.VehicleID]*ledgerdomain.Session
	occupancy map[int]map[int]ledgerdomain.VehicleID
	history   map[ledgerdomain.VehicleID][]ledgerdomain.HistoryRecord
	lockdown  bool
}

func NewService(p Params) ledgerdomain.Service {
	occupancy := make(map[int]map[int]ledgerdomain.VehicleID, p.Cfg.Lot.Floors)
	for floor := 0; floor < p.Cfg.Lot.Floors; floor++ {
		occupancy[floor] = make(map[int]ledgerdomain.VehicleID)
	}

	return &Service{
		log:        p.Log.Named("ledger.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		validator:  p.Validator,
		calculator: p.Calculator,
		archiver:   p.Archiver,
		obsMetrics: p.ObsMetrics,
		table: allocation.Table{
			Floors:        p.Cfg.Lot.Floors,
			SpotsPerFloor: p.Cfg.Lot.SpotsPerFloor,
		},
		paymentWindow: time.Duration(p.Cfg.Lot.PaymentWindowMinutes) * time.Minute,
		sessions:      make(map[ledgerdomain.VehicleID]*ledgerdomain.Session),
		occupancy:     occupancy,
		history:       make(map[ledgerdomain.VehicleID][]ledgerdomain.HistoryRecord),
	}
}

// occupancyView adapts the ledger's spot map to the allocator. A vehicle can
// be excluded so floor changes treat its own spot as free. Exclusion is a
// pointer rather than a zero value: the zero VehicleID is a legal identity
// (foreign plates are accepted as-is, empty included) and must never alias
// "no exclusion".
type occupancyView struct {
	occupancy map[int]map[int]ledgerdomain.VehicleID
	exclude   *ledgerdomain.VehicleID
}

func (v occupancyView) Occupied(floor, spot int) bool {
	holder, ok := v.occupancy[floor][spot]
	if !ok {
		return false
	}
	return v.exclude == nil || holder != *v.exclude
}

func (s *Service) RegisterEntry(ctx context.Context, req ledgerdomain.EntryRequest) (*ledgerdomain.EntryResponse, error) {
	vehicle := ledgerdomain.NewVehicleID(req.Country, req.RegistrationNo)

	if !s.validator.Validate(vehicle.Country, vehicle.RegistrationNo) {
		return nil, ledgerdomain.ErrInvalidPlate
	}
	if req.Floor < 0 || req.Floor >= s.table.Floors || !s.calculator.HasFloor(req.Floor) {
		return nil, ledgerdomain.ErrInvalidFloor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lockdown {
		return nil, ledgerdomain.ErrLotClosed
	}
	if _, exists := s.sessions[vehicle]; exists {
		return nil, ledgerdomain.ErrAlreadyParked
	}

	placement, err := allocation.Allocate(s.table, occupancyView{occupancy: s.occupancy}, req.Floor)
	if err != nil {
		if s.obsMetrics != nil {
			s.obsMetrics.RecordCapacityRejection(ctx, "entry")
		}
		return nil, ledgerdomain.ErrLotFull
	}

	now := s.clock.Now()
	session := &ledgerdomain.Session{
		ID:        s.genID.Generate(),
		Vehicle:   vehicle,
		Floor:     placement.Floor,
		Spot:      placement.Spot,
		EntryTime: now,
		State:     ledgerdomain.PaymentStateUnpaid,
	}
	s.sessions[vehicle] = session
	s.occupancy[placement.Floor][placement.Spot] = vehicle

	if s.obsMetrics != nil {
		s.obsMetrics.RecordEntry(ctx, placement.Floor)
	}
	s.log.Info("vehicle admitted",
		zap.String("vehicle", vehicle.String()),
		zap.Int("floor", placement.Floor),
		zap.Int("spot", placement.Spot),
	)

	return &ledgerdomain.EntryResponse{
		SessionID:      session.ID.String(),
		Country:        vehicle.Country,
		RegistrationNo: vehicle.RegistrationNo,
		Floor:          placement.Floor,
		Spot:           placement.Spot,
		EntryTime:      now,
	}, nil
}

func (s *Service) GetQuote(ctx context.Context, country, registrationNo string) (*ledgerdomain.Quote, error) {
	_ = ctx
	vehicle := ledgerdomain.NewVehicleID(country, registrationNo)

	s.mu.RLock()
	session, exists := s.sessions[vehicle]
	if !exists {
		s.mu.RUnlock()
		return nil, ledgerdomain.ErrVehicleNotFound
	}
	entryTime := session.EntryTime
	floor := session.Floor
	s.mu.RUnlock()

	minutes := elapsedMinutes(entryTime, s.clock.Now())
	fee, err := s.calculator.Fee(float64(minutes), floor)
	if err != nil {
		return nil, fmt.Errorf("quote fee: %w", err)
	}

	return &ledgerdomain.Quote{
		Country:        vehicle.Country,
		RegistrationNo: vehicle.RegistrationNo,
		Minutes:        minutes,
		Fee:            fee,
	}, nil
}

func (s *Service) Pay(ctx context.Context, req ledgerdomain.PaymentRequest) (*ledgerdomain.PaymentResponse, error) {
	vehicle := ledgerdomain.NewVehicleID(req.Country, req.RegistrationNo)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[vehicle]
	if !exists {
		return nil, ledgerdomain.ErrVehicleNotFound
	}
	if session.State == ledgerdomain.PaymentStatePaid {
		return nil, ledgerdomain.ErrAlreadyPaid
	}

	// The fee is recomputed at the moment of payment; a stale quote cannot
	// underpay a longer stay.
	now := s.clock.Now()
	minutes := elapsedMinutes(session.EntryTime, now)
	fee, err := s.calculator.Fee(float64(minutes), session.Floor)
	if err != nil {
		return nil, fmt.Errorf("payment fee: %w", err)
	}

	if req.Amount+amountEpsilon < fee {
		return nil, ledgerdomain.ErrInsufficientPayment
	}

	// Archive the computed fee, not the tendered amount.
	session.State = ledgerdomain.PaymentStatePaid
	session.PaymentTime = &now
	session.PaidFee = &fee

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPayment(ctx)
	}
	s.log.Info("session paid",
		zap.String("vehicle", vehicle.String()),
		zap.Float64("fee", fee),
	)

	return &ledgerdomain.PaymentResponse{
		Country:        vehicle.Country,
		RegistrationNo: vehicle.RegistrationNo,
		Fee:            fee,
		PaymentTime:    now,
	}, nil
}

func (s *Service) RegisterExit(ctx context.Context, country, registrationNo string) (*ledgerdomain.ExitResponse, error) {
	vehicle := ledgerdomain.NewVehicleID(country, registrationNo)

	s.mu.Lock()

	session, exists := s.sessions[vehicle]
	if !exists {
		s.mu.Unlock()
		return nil, ledgerdomain.ErrVehicleNotFound
	}
	if session.State != ledgerdomain.PaymentStatePaid {
		s.mu.Unlock()
		return nil, ledgerdomain.ErrNotPaid
	}

	now := s.clock.Now()
	// Boundary is inclusive: leaving at exactly payment time + window is
	// still honored.
	if now.Sub(*session.PaymentTime) > s.paymentWindow {
		s.mu.Unlock()
		return nil, ledgerdomain.ErrPaymentExpired
	}

	record := ledgerdomain.HistoryRecord{
		SessionID: session.ID,
		Country:   vehicle.Country,
		Plate:     vehicle.RegistrationNo,
		EntryTime: session.EntryTime,
		ExitTime:  now,
		Floor:     session.Floor,
		Fee:       *session.PaidFee,
	}
	floor := session.Floor
	spot := session.Spot

	s.history[vehicle] = append(s.history[vehicle], record)
	delete(s.occupancy[floor], spot)
	delete(s.sessions, vehicle)
	s.mu.Unlock()

	if s.archiver != nil {
		if err := s.archiver.ArchiveRecord(ctx, record); err != nil {
			s.log.Warn("failed to archive completed session",
				zap.String("vehicle", vehicle.String()),
				zap.Error(err),
			)
		}
	}
	if s.obsMetrics != nil {
		s.obsMetrics.RecordExit(ctx, floor)
	}
	s.log.Info("vehicle released",
		zap.String("vehicle", vehicle.String()),
		zap.Int("floor", floor),
		zap.Int("spot", spot),
	)

	return &ledgerdomain.ExitResponse{
		Country:        vehicle.Country,
		RegistrationNo: vehicle.RegistrationNo,
		Floor:          floor,
		Spot:           spot,
		Fee:            record.Fee,
		ExitTime:       now,
	}, nil
}

func (s *Service) ChangeFloor(ctx context.Context, req ledgerdomain.ChangeFloorRequest) (*ledgerdomain.ChangeFloorResponse, error) {
	vehicle := ledgerdomain.NewVehicleID(req.Country, req.RegistrationNo)

	if req.NewFloor < 0 || req.NewFloor >= s.table.Floors || !s.calculator.HasFloor(req.NewFloor) {
		return nil, ledgerdomain.ErrInvalidFloor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[vehicle]
	if !exists {
		return nil, ledgerdomain.ErrVehicleNotFound
	}

	// No fallback to other floors here; the vehicle's own spot counts as
	// free so a same-floor move cannot fail on a floor it already occupies.
	view := occupancyView{occupancy: s.occupancy, exclude: &vehicle}
	placement, err := allocation.AllocateOn(s.table, view, req.NewFloor)
	if err != nil {
		if s.obsMetrics != nil {
			s.obsMetrics.RecordCapacityRejection(ctx, "change_floor")
		}
		return nil, ledgerdomain.ErrFloorFull
	}

	delete(s.occupancy[session.Floor], session.Spot)
	session.Floor = placement.Floor
	session.Spot = placement.Spot
	s.occupancy[placement.Floor][placement.Spot] = vehicle

	s.log.Info("vehicle relocated",
		zap.String("vehicle", vehicle.String()),
		zap.Int("floor", placement.Floor),
		zap.Int("spot", placement.Spot),
	)

	return &ledgerdomain.ChangeFloorResponse{
		Country:        vehicle.Country,
		RegistrationNo: vehicle.RegistrationNo,
		Floor:          placement.Floor,
		Spot:           placement.Spot,
	}, nil
}

func (s *Service) ListActive(ctx context.Context) ([]ledgerdomain.ActiveSession, error) {
	return s.SearchActive(ctx, "")
}

func (s *Service) SearchActive(ctx context.Context, query string) ([]ledgerdomain.ActiveSession, error) {
	_ = ctx
	query = strings.ToUpper(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledgerdomain.ActiveSession, 0, len(s.sessions))
	for vehicle, session := range s.sessions {
		if query != "" && !strings.Contains(vehicle.String(), query) {
			continue
		}
		out = append(out, projectSession(session))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].RegistrationNo < out[j].RegistrationNo
	})
	return out, nil
}

func (s *Service) ListHistory(ctx context.Context) (map[string][]ledgerdomain.HistoryRecord, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]ledgerdomain.HistoryRecord, len(s.history))
	for vehicle, records := range s.history {
		copied := make([]ledgerdomain.HistoryRecord, len(records))
		copy(copied, records)
		out[vehicle.String()] = copied
	}
	return out, nil
}

func (s *Service) SetLockdown(ctx context.Context, enabled bool) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lockdown = enabled
	s.log.Info("lockdown changed", zap.Bool("enabled", enabled))
	return nil
}

func (s *Service) Lockdown(ctx context.Context) bool {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lockdown
}

func projectSession(session *ledgerdomain.Session) ledgerdomain.ActiveSession {
	view := ledgerdomain.ActiveSession{
		SessionID:      session.ID.String(),
		Country:        session.Vehicle.Country,
		RegistrationNo: session.Vehicle.RegistrationNo,
		Floor:          session.Floor,
		Spot:           session.Spot,
		EntryTime:      session.EntryTime,
		Paid:           session.State == ledgerdomain.PaymentStatePaid,
	}
	if session.PaymentTime != nil {
		paymentTime := *session.PaymentTime
		view.PaymentTime = &paymentTime
	}
	if session.PaidFee != nil {
		paidFee := *session.PaidFee
		view.PaidFee = &paidFee
	}
	return view
}

func elapsedMinutes(from, to time.Time) int64 {
	return int64(math.Trunc(to.Sub(from).Minutes()))
}
