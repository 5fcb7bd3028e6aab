package elevrider

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevdoor"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevtrace"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
)

var Log = logger.GetLogger()

const DEFAULT_BOARDING_PROBABILITY = 0.9

var (
	ErrDirectionMismatch = errors.New("rider direction does not match its trip")
	ErrUnknownFloor      = errors.New("no door at rider floor")
	ErrAlreadyStarted    = errors.New("rider already started")
)

// Controller is the part of the building a rider talks to.
type Controller interface {
	CallElevator(floor int, dirn elevconsts.Dirn)
	AddDestination(floor int)
	Door(floor int) *elevdoor.Door
	Arrivals(floor int) uint64
	WaitForArrival(ctx context.Context, floor int, since uint64) error
}

type Rider struct {
	mu                  sync.Mutex
	id                  int
	name                string
	startFloor          int
	destinationFloor    int
	direction           elevconsts.Dirn
	state               elevconsts.RiderState
	boarded             bool
	arrived             bool
	started             bool
	boardingProbability float64
	rng                 *rand.Rand
	waitTimeout         time.Duration
	sink                elevtrace.Sink
	done                chan struct{}
}

type Option func(*Rider)

func WithBoardingProbability(p float64) Option {
	return func(r *Rider) {
		r.boardingProbability = p
	}
}

// WithRand makes the boarding decision draw from rng instead of the shared source.
func WithRand(rng *rand.Rand) Option {
	return func(r *Rider) {
		r.rng = rng
	}
}

// WithWaitTimeout bounds every blocking step of the workflow. Zero means no bound.
func WithWaitTimeout(timeout time.Duration) Option {
	return func(r *Rider) {
		r.waitTimeout = timeout
	}
}

func WithSink(sink elevtrace.Sink) Option {
	return func(r *Rider) {
		r.sink = sink
	}
}

// New creates a rider. The direction has to agree with the trip, and a trip must change floor.
func New(id int, startFloor int, destinationFloor int, direction elevconsts.Dirn, options ...Option) (*Rider, error) {
	if startFloor == destinationFloor || direction != elevconsts.DirnBetween(startFloor, destinationFloor) {
		return nil, fmt.Errorf("%w: rider %d from %d to %d going %v",
			ErrDirectionMismatch, id, startFloor, destinationFloor, direction)
	}

	r := &Rider{
		id:                  id,
		name:                ActorName(id),
		startFloor:          startFloor,
		destinationFloor:    destinationFloor,
		direction:           direction,
		state:               elevconsts.Created,
		boardingProbability: DEFAULT_BOARDING_PROBABILITY,
		sink:                elevtrace.Discard,
		done:                make(chan struct{}),
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

func ActorName(id int) string {
	return fmt.Sprintf("Rider[%d]", id)
}

func (r *Rider) ID() int {
	return r.id
}

func (r *Rider) Name() string {
	return r.name
}

func (r *Rider) StartFloor() int {
	return r.startFloor
}

func (r *Rider) DestinationFloor() int {
	return r.destinationFloor
}

func (r *Rider) Direction() elevconsts.Dirn {
	return r.direction
}

// ExpectedDistance is the number of floors the rider has to travel.
func (r *Rider) ExpectedDistance() int {
	if r.destinationFloor > r.startFloor {
		return r.destinationFloor - r.startFloor
	}
	return r.startFloor - r.destinationFloor
}

func (r *Rider) State() elevconsts.RiderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Rider) HasBoarded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boarded
}

func (r *Rider) HasArrived() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.arrived
}

// Done is closed when Run returns.
func (r *Rider) Done() <-chan struct{} {
	return r.done
}

func (r *Rider) setState(state elevconsts.RiderState, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = state
	switch state {
	case elevconsts.Boarded:
		r.boarded = true
	case elevconsts.Arrived:
		r.arrived = true
	}
	elevtrace.Emitf(r.sink, elevtrace.Rider, r.name, format, args...)
}

func (r *Rider) decide() bool {
	switch {
	case r.boardingProbability >= 1:
		return true
	case r.boardingProbability <= 0:
		return false
	case r.rng != nil:
		return r.rng.Float64() < r.boardingProbability
	default:
		return rand.Float64() < r.boardingProbability
	}
}

func (r *Rider) wait(ctx context.Context, step func(ctx context.Context) error) error {
	if r.waitTimeout <= 0 {
		return step(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, r.waitTimeout)
	defer cancel()
	return step(ctx)
}

func (r *Rider) cancelled(err error) error {
	r.setState(elevconsts.Cancelled, "cancelled: %v", err)
	return err
}

// Run executes the trip. Declining and missing the door are normal outcomes and return nil.
// Cancellation, or a bounded wait running out, leaves the rider Cancelled and returns the context error.
func (r *Rider) Run(ctx context.Context, controller Controller) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()
	defer close(r.done)

	startDoor := controller.Door(r.startFloor)
	destinationDoor := controller.Door(r.destinationFloor)
	if startDoor == nil || destinationDoor == nil {
		return r.cancelled(fmt.Errorf("%w: %d -> %d", ErrUnknownFloor, r.startFloor, r.destinationFloor))
	}

	openedBefore := startDoor.Openings()
	controller.CallElevator(r.startFloor, r.direction)
	r.setState(elevconsts.CallPlaced, "call placed at floor %d going %v", r.startFloor, r.direction)

	r.setState(elevconsts.WaitingAtDoor, "waiting at door %d", r.startFloor)
	err := r.wait(ctx, func(ctx context.Context) error {
		return startDoor.WaitForOpenSince(ctx, openedBefore)
	})
	if err != nil {
		return r.cancelled(err)
	}

	if !r.decide() {
		r.setState(elevconsts.Declined, "declined to board at floor %d", r.startFloor)
		return nil
	}
	if !startDoor.IsOpen() {
		r.setState(elevconsts.MissedBoarding, "missed boarding, door %d closed", r.startFloor)
		return nil
	}

	arrivalsBefore := controller.Arrivals(r.destinationFloor)
	exitOpenedBefore := destinationDoor.Openings()
	r.setState(elevconsts.Boarded, "boarded at floor %d", r.startFloor)
	controller.AddDestination(r.destinationFloor)
	r.setState(elevconsts.DestinationSet, "destination set: %d", r.destinationFloor)

	err = r.wait(ctx, startDoor.WaitForDoorClosed)
	if err != nil {
		return r.cancelled(err)
	}

	r.setState(elevconsts.WaitingArrival, "waiting for floor %d", r.destinationFloor)
	err = r.wait(ctx, func(ctx context.Context) error {
		return controller.WaitForArrival(ctx, r.destinationFloor, arrivalsBefore)
	})
	if err != nil {
		return r.cancelled(err)
	}
	r.setState(elevconsts.Arrived, "destination reached: floor %d", r.destinationFloor)

	err = r.wait(ctx, func(ctx context.Context) error {
		return destinationDoor.WaitForOpenSince(ctx, exitOpenedBefore)
	})
	if err != nil {
		return r.cancelled(err)
	}
	r.setState(elevconsts.Exited, "exited at floor %d", r.destinationFloor)
	return nil
}

// Start runs the rider on its own goroutine, tracked by waitGroup.
func (r *Rider) Start(ctx context.Context, waitGroup *sync.WaitGroup, controller Controller) {
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		err := r.Run(ctx, controller)
		if err != nil {
			Log.Warn().Msgf("%s ended in %v: %v", r.name, r.State(), err)
			return
		}
		Log.Info().Msgf("%s finished in %v", r.name, r.State())
	}()
}
