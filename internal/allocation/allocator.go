package allocation

import "errors"

var (
	ErrLotFull   = errors.New("lot_full")
	ErrFloorFull = errors.New("floor_full")
)

// Table is the fixed lot topology: Floors levels indexed 0..Floors-1, each
// with SpotsPerFloor numbered spots 1..SpotsPerFloor.
type Table struct {
	Floors        int
	SpotsPerFloor int
}

// Occupancy is a read-only view of the spots currently held.
type Occupancy interface {
	Occupied(floor, spot int) bool
}

// Placement is a concrete floor/spot assignment.
type Placement struct {
	Floor int
	Spot  int
}

// Allocate finds the first free spot, preferring the requested floor and
// falling through to the remaining floors in ascending index order. Spots
// are scanned ascending so results are deterministic for a fixed occupancy
// set. Returns ErrLotFull when every floor is full.
func Allocate(t Table, occ Occupancy, requestedFloor int) (Placement, error) {
	if p, ok := scanFloor(t, occ, requestedFloor); ok {
		return p, nil
	}
	for floor := 0; floor < t.Floors; floor++ {
		if floor == requestedFloor {
			continue
		}
		if p, ok := scanFloor(t, occ, floor); ok {
			return p, nil
		}
	}
	return Placement{}, ErrLotFull
}

// AllocateOn finds the first free spot on a single floor, with no fallback.
// Returns ErrFloorFull when that floor is full.
func AllocateOn(t Table, occ Occupancy, floor int) (Placement, error) {
	if p, ok := scanFloor(t, occ, floor); ok {
		return p, nil
	}
	return Placement{}, ErrFloorFull
}

func scanFloor(t Table, occ Occupancy, floor int) (Placement, bool) {
	for spot := 1; spot <= t.SpotsPerFloor; spot++ {
		if !occ.Occupied(floor, spot) {
			return Placement{Floor: floor, Spot: spot}, true
		}
	}
	return Placement{}, false
}
