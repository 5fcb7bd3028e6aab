package elevcontroller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconfig"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevdoor"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevstate"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevsync"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevtrace"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
)

var Log = logger.GetLogger()

const CONTROLLER_ACTOR = "Controller"

// SystemController is the only actor that moves the elevator or operates a door.
type SystemController struct {
	elevator *elevstate.Elevator
	doors    map[int]*elevdoor.Door

	// one token; held for the whole cycle of the door that is open
	openSlot chan struct{}

	mu              sync.Mutex
	openDoor        *elevdoor.Door
	openDoorChanged *elevsync.Signal

	timing elevconfig.Timing
	sink   elevtrace.Sink
}

func New(lowestFloor int, highestFloor int, timing elevconfig.Timing, sink elevtrace.Sink) *SystemController {
	if sink == nil {
		sink = elevtrace.Discard
	}

	doors := make(map[int]*elevdoor.Door, highestFloor-lowestFloor+1)
	for floor := lowestFloor; floor <= highestFloor; floor++ {
		doors[floor] = elevdoor.New(floor, timing, sink)
	}

	openSlot := make(chan struct{}, 1)
	openSlot <- struct{}{}

	return &SystemController{
		elevator:        elevstate.New(lowestFloor, highestFloor, sink),
		doors:           doors,
		openSlot:        openSlot,
		openDoorChanged: elevsync.NewSignal(),
		timing:          timing,
		sink:            sink,
	}
}

func (c *SystemController) Elevator() *elevstate.Elevator {
	return c.elevator
}

// Door returns the door at floor, or nil when the building has no such floor.
func (c *SystemController) Door(floor int) *elevdoor.Door {
	return c.doors[floor]
}

// CallElevator places an external call. The direction is only informative for a single car.
func (c *SystemController) CallElevator(floor int, dirn elevconsts.Dirn) {
	Log.Debug().Msgf("call at floor %d going %v", floor, dirn)
	c.elevator.AddCall(floor)
}

func (c *SystemController) AddDestination(floor int) {
	c.elevator.AddDestination(floor)
}

func (c *SystemController) Arrivals(floor int) uint64 {
	return c.elevator.Arrivals(floor)
}

func (c *SystemController) WaitForArrival(ctx context.Context, floor int, since uint64) error {
	return c.elevator.WaitForArrival(ctx, floor, since)
}

// WaitForDoorOpen blocks until the door at floor is open. A floor without a door returns at once.
func (c *SystemController) WaitForDoorOpen(ctx context.Context, floor int) error {
	door := c.doors[floor]
	if door == nil {
		return nil
	}
	return door.WaitForDoorOpen(ctx)
}

// OpenDoor returns the door holding the open-door slot, or nil.
func (c *SystemController) OpenDoor() *elevdoor.Door {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openDoor
}

// WaitForSlotFree blocks until no door holds the open-door slot.
func (c *SystemController) WaitForSlotFree(ctx context.Context) error {
	return elevsync.Await(ctx, &c.mu, c.openDoorChanged, func() bool {
		return c.openDoor == nil
	})
}

func (c *SystemController) IsDoorOpen() bool {
	for _, door := range c.doors {
		if door.IsOpen() {
			return true
		}
	}
	return false
}

// OpenDoorCount counts the doors that are not Closed.
func (c *SystemController) OpenDoorCount() int {
	count := 0
	for _, door := range c.doors {
		if door.State() != elevconsts.Closed {
			count++
		}
	}
	return count
}

// EstimateTimeToIdle is the simulated time needed to serve what is pending now.
func (c *SystemController) EstimateTimeToIdle() time.Duration {
	return elevstate.TimeToIdle(c.elevator.Snapshot(), c.timing)
}

func (c *SystemController) emitf(format string, args ...any) {
	elevtrace.Emitf(c.sink, elevtrace.Elevator, CONTROLLER_ACTOR, format, args...)
}

func (c *SystemController) acquireSlot(ctx context.Context, door *elevdoor.Door) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.openSlot:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.openDoor = door
	c.openDoorChanged.Broadcast()
	return nil
}

func (c *SystemController) releaseSlot() {
	c.mu.Lock()
	c.openDoor = nil
	c.openDoorChanged.Broadcast()
	c.mu.Unlock()

	c.openSlot <- struct{}{}
}

// serveStop runs one door cycle at the current floor and clears the requests that existed when it began.
func (c *SystemController) serveStop(ctx context.Context) error {
	floor := c.elevator.Floor()
	door := c.doors[floor]
	mark := c.elevator.RequestMark()

	c.elevator.SetMoving(false)
	c.emitf("stop at floor %d", floor)

	err := c.acquireSlot(ctx, door)
	if err != nil {
		return err
	}
	err = door.Operate(ctx, c.elevator)
	c.releaseSlot()
	if err != nil {
		return err
	}

	c.elevator.ClearPendingUpTo(mark)
	c.emitf("stop at floor %d finished", floor)

	return elevsync.Sleep(ctx, c.timing.StopSettleDuration)
}

// Run drives the elevator until ctx is cancelled.
func (c *SystemController) Run(ctx context.Context) error {
	defer c.elevator.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if c.elevator.HasPendingAtCurrentFloor() {
			if err := c.serveStop(ctx); err != nil {
				return err
			}
			continue
		}

		dirn := c.elevator.ChooseDirection()
		if dirn == elevconsts.Idle {
			c.elevator.SetMoving(false)
			c.elevator.SetDirection(elevconsts.Idle)
			if _, err := c.elevator.WaitForRequests(ctx, c.timing.IdlePollInterval); err != nil {
				return err
			}
			continue
		}

		c.elevator.SetDirection(dirn)
		c.elevator.SetMoving(true)
		if err := elevsync.Sleep(ctx, c.timing.MovementDuration); err != nil {
			return err
		}
		c.elevator.MoveOneFloor()
	}
}

// Start runs the dispatch loop on its own goroutine, tracked by waitGroup.
func (c *SystemController) Start(ctx context.Context, waitGroup *sync.WaitGroup) {
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		err := c.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			Log.Error().Msgf("Controller stopped: %v", err)
			return
		}
		Log.Warn().Msgf("Controller Go routine has been signaled to stop")
	}()
}
