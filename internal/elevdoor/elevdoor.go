package elevdoor

import (
	"context"
	"fmt"
	"sync"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconfig"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevsync"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevtrace"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
)

var Log = logger.GetLogger()

const (
	ACTION_OPENING            = "opening"
	ACTION_OPENED             = "opened"
	ACTION_CLOSING            = "closing"
	ACTION_CLOSED             = "closed"
	ACTION_CLOSED_INTERRUPTED = "closed (interrupted)"
)

// FloorWaiter blocks until the elevator stands at a floor.
type FloorWaiter interface {
	WaitForFloor(ctx context.Context, floor int) error
}

type Door struct {
	mu       sync.Mutex
	floor    int
	name     string
	state    elevconsts.DoorState
	openings uint64
	changed  *elevsync.Signal
	timing   elevconfig.Timing
	sink     elevtrace.Sink
}

func New(floor int, timing elevconfig.Timing, sink elevtrace.Sink) *Door {
	if sink == nil {
		sink = elevtrace.Discard
	}
	return &Door{
		floor:   floor,
		name:    ActorName(floor),
		state:   elevconsts.Closed,
		changed: elevsync.NewSignal(),
		timing:  timing,
		sink:    sink,
	}
}

func ActorName(floor int) string {
	return fmt.Sprintf("Door[%d]", floor)
}

func (d *Door) Floor() int {
	return d.floor
}

func (d *Door) Name() string {
	return d.name
}

func (d *Door) State() elevconsts.DoorState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Door) IsOpen() bool {
	return d.State() == elevconsts.Open
}

func (d *Door) IsClosing() bool {
	return d.State() == elevconsts.Closing
}

// Openings counts how many times the door has reached Open.
func (d *Door) Openings() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openings
}

func (d *Door) setState(state elevconsts.DoorState, action string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = state
	if state == elevconsts.Open {
		d.openings++
	}
	elevtrace.Emit(d.sink, elevtrace.Door, d.name, action)
	d.changed.Broadcast()
}

// forceClosed puts the door back to Closed after an interrupted cycle.
func (d *Door) forceClosed() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == elevconsts.Closed {
		return
	}
	Log.Warn().Msgf("%s forced closed from %v", d.name, d.state)
	d.state = elevconsts.Closed
	elevtrace.Emit(d.sink, elevtrace.Door, d.name, ACTION_CLOSED_INTERRUPTED)
	d.changed.Broadcast()
}

// Open runs Closed -> Opening -> Open. A door that is not Closed is left as it is.
func (d *Door) Open(ctx context.Context) error {
	d.mu.Lock()
	if d.state != elevconsts.Closed {
		Log.Warn().Msgf("%s asked to open while %v", d.name, d.state)
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	d.setState(elevconsts.Opening, ACTION_OPENING)
	if err := elevsync.Sleep(ctx, d.timing.DoorOpeningDuration); err != nil {
		d.forceClosed()
		return err
	}
	d.setState(elevconsts.Open, ACTION_OPENED)
	return nil
}

// Close runs Open -> Closing -> Closed.
func (d *Door) Close(ctx context.Context) error {
	d.setState(elevconsts.Closing, ACTION_CLOSING)
	if err := elevsync.Sleep(ctx, d.timing.DoorClosingDuration); err != nil {
		d.forceClosed()
		return err
	}
	d.setState(elevconsts.Closed, ACTION_CLOSED)
	return nil
}

// Operate runs one full cycle once the elevator is at this floor: open, dwell, close, egress grace.
// On cancellation the door is left Closed.
func (d *Door) Operate(ctx context.Context, waiter FloorWaiter) error {
	err := waiter.WaitForFloor(ctx, d.floor)
	if err != nil {
		return err
	}

	err = d.Open(ctx)
	if err != nil {
		return err
	}

	err = elevsync.Sleep(ctx, d.timing.DoorOpenDuration)
	if err != nil {
		d.forceClosed()
		return err
	}

	err = d.Close(ctx)
	if err != nil {
		return err
	}

	return elevsync.Sleep(ctx, d.timing.EgressGraceDuration)
}

func (d *Door) WaitForDoorOpen(ctx context.Context) error {
	return elevsync.Await(ctx, &d.mu, d.changed, func() bool {
		return d.state == elevconsts.Open
	})
}

// WaitForDoorClosed blocks until the door is neither Open nor Closing.
func (d *Door) WaitForDoorClosed(ctx context.Context) error {
	return elevsync.Await(ctx, &d.mu, d.changed, func() bool {
		return d.state != elevconsts.Open && d.state != elevconsts.Closing
	})
}

// WaitForOpenSince blocks until the door is Open or has been opened more than since times.
// A waiter that records Openings first cannot miss a short cycle.
func (d *Door) WaitForOpenSince(ctx context.Context, since uint64) error {
	return elevsync.Await(ctx, &d.mu, d.changed, func() bool {
		return d.state == elevconsts.Open || d.openings > since
	})
}
