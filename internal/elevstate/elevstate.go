package elevstate

import (
	"context"
	"sync"
	"time"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevsync"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevtrace"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
	"github.com/tiendc/go-deepcopy"
)

var Log = logger.GetLogger()

const ELEVATOR_ACTOR = "Elevator"

const (
	// starts the action of every event emitted when the elevator changes floor
	ACTION_FLOOR_PREFIX = "floor: "

	ACTION_STARTED_MOVING = "started moving"
	ACTION_STOPPED_MOVING = "stopped moving"
)

type Elevator struct {
	mu              sync.Mutex
	state           State
	seq             uint64
	arrivals        map[int]uint64
	moving          bool
	floorChanged    *elevsync.Signal
	requestsChanged *elevsync.Signal
	sink            elevtrace.Sink
}

func New(lowestFloor int, highestFloor int, sink elevtrace.Sink) *Elevator {
	if sink == nil {
		sink = elevtrace.Discard
	}
	return &Elevator{
		state:           NewState(lowestFloor, highestFloor),
		arrivals:        make(map[int]uint64),
		floorChanged:    elevsync.NewSignal(),
		requestsChanged: elevsync.NewSignal(),
		sink:            sink,
	}
}

func (e *Elevator) emitf(format string, args ...any) {
	elevtrace.Emitf(e.sink, elevtrace.Elevator, ELEVATOR_ACTOR, format, args...)
}

// AddCall records an external request. Floors outside the building are ignored.
func (e *Elevator) AddCall(floor int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.InRange(floor) {
		Log.Debug().Msgf("ignoring call at floor %d outside [%d, %d]", floor, e.state.LowestFloor, e.state.HighestFloor)
		return
	}
	e.seq++
	e.state.Calls[floor] = e.seq
	e.emitf("call added: %d", floor)
	e.requestsChanged.Broadcast()
}

// AddDestination records an internal request. Floors outside the building and the current floor are ignored.
func (e *Elevator) AddDestination(floor int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.InRange(floor) || floor == e.state.Floor {
		Log.Debug().Msgf("ignoring destination %d at floor %d", floor, e.state.Floor)
		return
	}
	e.seq++
	e.state.Destinations[floor] = e.seq
	e.emitf("destination added: %d", floor)
	e.requestsChanged.Broadcast()
}

func (e *Elevator) HasPendingAtCurrentFloor() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.PendingAt(e.state.Floor)
}

func (e *Elevator) ClearPendingAtCurrentFloor() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.ClearAt(e.state.Floor)
	e.requestsChanged.Broadcast()
}

// RequestMark returns the sequence number of the latest request. Pass it to ClearPendingUpTo
// to leave requests made after the mark pending.
func (e *Elevator) RequestMark() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

func (e *Elevator) ClearPendingUpTo(mark uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.ClearAtUpTo(e.state.Floor, mark)
	e.requestsChanged.Broadcast()
}

func (e *Elevator) ChooseDirection() elevconsts.Dirn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ChooseDirection()
}

func (e *Elevator) SetDirection(dirn elevconsts.Dirn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Direction != dirn {
		e.state.Direction = dirn
		e.emitf("direction: %v", dirn)
	}
}

func (e *Elevator) MoveOneFloor() {
	e.mu.Lock()
	defer e.mu.Unlock()

	moved, reversed := e.state.MoveOneFloor()
	switch {
	case moved:
		e.arrivals[e.state.Floor]++
		e.emitf("%s%d", ACTION_FLOOR_PREFIX, e.state.Floor)
		e.floorChanged.Broadcast()
	case reversed:
		e.emitf("reversed at floor %d, direction: %v", e.state.Floor, e.state.Direction)
	}
}

func (e *Elevator) SetMoving(moving bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setMoving(moving)
}

func (e *Elevator) setMoving(moving bool) {
	if e.moving == moving {
		return
	}
	e.moving = moving
	if moving {
		e.emitf(ACTION_STARTED_MOVING)
	} else {
		e.emitf(ACTION_STOPPED_MOVING)
	}
}

func (e *Elevator) IsMoving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moving
}

func (e *Elevator) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setMoving(false)
	e.state.Direction = elevconsts.Idle
	e.emitf("stopped at floor %d", e.state.Floor)
}

func (e *Elevator) Floor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Floor
}

func (e *Elevator) Direction() elevconsts.Dirn {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Direction
}

func (e *Elevator) LowestFloor() int {
	return e.state.LowestFloor
}

func (e *Elevator) HighestFloor() int {
	return e.state.HighestFloor
}

func (e *Elevator) Calls() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedFloors(e.state.Calls)
}

func (e *Elevator) Destinations() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sortedFloors(e.state.Destinations)
}

// Arrivals counts how many times the elevator has moved onto floor.
func (e *Elevator) Arrivals(floor int) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arrivals[floor]
}

// WaitForFloor blocks until the elevator is at target. A target outside the building returns at once.
func (e *Elevator) WaitForFloor(ctx context.Context, target int) error {
	if !e.state.InRange(target) {
		return nil
	}
	return elevsync.Await(ctx, &e.mu, e.floorChanged, func() bool {
		return e.state.Floor == target
	})
}

// WaitForArrival blocks until the elevator is at floor or has arrived there more than since times.
func (e *Elevator) WaitForArrival(ctx context.Context, floor int, since uint64) error {
	if !e.state.InRange(floor) {
		return nil
	}
	return elevsync.Await(ctx, &e.mu, e.floorChanged, func() bool {
		return e.state.Floor == floor || e.arrivals[floor] > since
	})
}

func (e *Elevator) WaitUntilEmpty(ctx context.Context) error {
	return elevsync.Await(ctx, &e.mu, e.requestsChanged, func() bool {
		return e.state.Empty()
	})
}

// WaitForRequests blocks until some request is pending or timeout elapses, and reports which happened first.
func (e *Elevator) WaitForRequests(ctx context.Context, timeout time.Duration) (bool, error) {
	return elevsync.AwaitTimeout(ctx, &e.mu, e.requestsChanged, func() bool {
		return !e.state.Empty()
	}, timeout)
}

func (e *Elevator) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	var snapshot State
	if err := deepcopy.Copy(&snapshot, &e.state); err != nil {
		Log.Error().Msgf("copying elevator state: %v", err)
		return NewState(e.state.LowestFloor, e.state.HighestFloor)
	}
	return snapshot
}
