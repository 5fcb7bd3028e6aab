package elevator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconfig"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevcontroller"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevmetadata"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevrider"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevtrace"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevutils"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"

	"github.com/google/uuid"
	"github.com/xyproto/randomstring"
)

var Logger = logger.GetLogger()

const IDENTIFIER_DEFAULT_LEN = 10

var (
	ErrFloorOutOfRange = errors.New("rider floor outside the building")
	ErrNotRunning      = errors.New("building not running")
	ErrAlreadyRunning  = errors.New("building already running")
)

// Building owns one controller (elevator and doors), the trace and every rider spawned into it.
type Building struct {
	MetaData   *elevmetadata.BuildingMetaData
	Config     elevconfig.Config
	Trace      *elevtrace.Trace
	Controller *elevcontroller.SystemController

	sink elevtrace.Sink

	mu             sync.Mutex
	riders         []*elevrider.Rider
	riderCtx       context.Context
	riderWaitGroup *sync.WaitGroup

	running bool

	//used for graceful shutdown
	waitGroupArray []*sync.WaitGroup
	cancelArray    []context.CancelFunc
}

func NewBuilding(config elevconfig.Config) (*Building, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Identifier == "" {
		config.Identifier = randomstring.EnglishFrequencyString(IDENTIFIER_DEFAULT_LEN)
		Logger.Warn().Msgf("No building identifier provided, generated random identifier \"%v\"", config.Identifier)
	}

	runID := uuid.New()
	trace := elevtrace.NewTrace(runID)
	sink := elevtrace.MultiSink{trace, elevtrace.NewLogSink(Logger)}

	metaData := &elevmetadata.BuildingMetaData{
		SoftwareVersion: elevutils.GetGitHash(),
		Identifier:      config.Identifier,
		RunID:           runID.String(),
		LowestFloor:     config.LowestFloor,
		HighestFloor:    config.HighestFloor,
	}

	return &Building{
		MetaData:   metaData,
		Config:     config,
		Trace:      trace,
		Controller: elevcontroller.New(config.LowestFloor, config.HighestFloor, config.Timing, sink),
		sink:       sink,
	}, nil
}

func (b *Building) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		Logger.Error().Msg("Building already running")
		return ErrAlreadyRunning
	}

	//Launch Threads One By One
	ctxController, cancelController := context.WithCancel(context.Background())
	wgController := &sync.WaitGroup{}
	b.waitGroupArray = append(b.waitGroupArray, wgController)
	b.Controller.Start(ctxController, wgController)
	b.cancelArray = append(b.cancelArray, cancelController)

	// riders are stopped before the controller
	ctxRiders, cancelRiders := context.WithCancel(context.Background())
	wgRiders := &sync.WaitGroup{}
	b.waitGroupArray = append(b.waitGroupArray, wgRiders)
	b.riderCtx = ctxRiders
	b.riderWaitGroup = wgRiders
	b.cancelArray = append(b.cancelArray, cancelRiders)

	b.running = true
	Logger.Info().Msgf("Building: %v", b.MetaData.String())
	return nil
}

func (b *Building) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		Logger.Error().Msg("Building not running, so cannot stop building")
		return ErrNotRunning
	}

	Logger.Debug().Msg("Stopping Building")

	//Gracefully shutdown all threads one by one
	for i := len(b.cancelArray) - 1; i >= 0; i-- {
		b.cancelArray[i]()
		b.waitGroupArray[i].Wait()
	}
	b.cancelArray = nil
	b.waitGroupArray = nil

	Logger.Debug().Msg("Stopped Building")
	b.running = false
	return nil
}

func (b *Building) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// SpawnRider creates a rider and starts its trip.
func (b *Building) SpawnRider(id int, startFloor int, destinationFloor int, direction elevconsts.Dirn) (*elevrider.Rider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil, ErrNotRunning
	}
	if !b.Config.InRange(startFloor) || !b.Config.InRange(destinationFloor) {
		return nil, fmt.Errorf("%w: rider %d from %d to %d, building %s",
			ErrFloorOutOfRange, id, startFloor, destinationFloor, b.MetaData.GetFloorRange())
	}

	rider, err := elevrider.New(id, startFloor, destinationFloor, direction,
		elevrider.WithBoardingProbability(b.Config.BoardingProbability),
		elevrider.WithWaitTimeout(b.Config.Timing.WaitTimeout),
		elevrider.WithSink(b.sink))
	if err != nil {
		return nil, err
	}

	Logger.Info().Msgf("Spawning %s %d -> %d, elevator idle in about %v",
		rider.Name(), startFloor, destinationFloor, b.Controller.EstimateTimeToIdle())

	b.riders = append(b.riders, rider)
	rider.Start(b.riderCtx, b.riderWaitGroup, b.Controller)
	return rider, nil
}

// SpawnTrip spawns a rider travelling in the direction of its trip.
func (b *Building) SpawnTrip(trip elevutils.Trip) (*elevrider.Rider, error) {
	direction := elevconsts.DirnBetween(trip.StartFloor, trip.DestinationFloor)
	return b.SpawnRider(trip.ID, trip.StartFloor, trip.DestinationFloor, direction)
}

func (b *Building) Riders() []*elevrider.Rider {
	b.mu.Lock()
	defer b.mu.Unlock()
	riders := make([]*elevrider.Rider, len(b.riders))
	copy(riders, b.riders)
	return riders
}

// WaitForRiders blocks until every rider spawned so far has finished.
func (b *Building) WaitForRiders(ctx context.Context) error {
	for _, rider := range b.Riders() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rider.Done():
		}
	}
	return nil
}

// WaitUntilIdle blocks until no request is pending and no door holds the open-door slot.
func (b *Building) WaitUntilIdle(ctx context.Context) error {
	err := b.Controller.Elevator().WaitUntilEmpty(ctx)
	if err != nil {
		return err
	}
	return b.Controller.WaitForSlotFree(ctx)
}

// RunScenario spawns every trip and waits for all riders and the elevator to finish.
func (b *Building) RunScenario(ctx context.Context, trips []elevutils.Trip) error {
	for _, trip := range trips {
		if _, err := b.SpawnTrip(trip); err != nil {
			return err
		}
	}

	err := b.WaitForRiders(ctx)
	if err != nil {
		return err
	}
	return b.WaitUntilIdle(ctx)
}

// Outcomes counts riders per workflow state.
func (b *Building) Outcomes() map[elevconsts.RiderState]int {
	outcomes := make(map[elevconsts.RiderState]int)
	for _, rider := range b.Riders() {
		outcomes[rider.State()]++
	}
	return outcomes
}

// VerifyTrace checks the safety rules against everything recorded so far.
func (b *Building) VerifyTrace() error {
	return elevcontroller.VerifyTrace(b.Trace.Events())
}

func (b *Building) PrintStatus() {
	elevator := b.Controller.Elevator()
	openDoor := "none"
	if door := b.Controller.OpenDoor(); door != nil {
		openDoor = door.Name()
	}

	Logger.Info().Msgf("  +--------------------------+")
	Logger.Info().Msgf("  |floor  = %-2d               |", elevator.Floor())
	Logger.Info().Msgf("  |dirn   = %-17s|", elevator.Direction().String())
	Logger.Info().Msgf("  |moving = %-17v|", elevator.IsMoving())
	Logger.Info().Msgf("  |door   = %-17s|", openDoor)
	Logger.Info().Msgf("  +--------------------------+")
	Logger.Info().Msgf("  calls: %v destinations: %v", elevator.Calls(), elevator.Destinations())
	for _, rider := range b.Riders() {
		Logger.Info().Msgf("  %s %d -> %d: %v", rider.Name(), rider.StartFloor(), rider.DestinationFloor(), rider.State())
	}
}
