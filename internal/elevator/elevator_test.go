package elevator

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconfig"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevcontroller"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevrider"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevtrace"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevutils"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
	"github.com/rs/zerolog"
)

const TEST_TIMEOUT = 10 * time.Second

func init() {
	logger.GetLoggerConfigured(zerolog.Disabled)
}

func testConfig() elevconfig.Config {
	config := elevconfig.Default()
	config.Identifier = "testbuilding"
	config.BoardingProbability = 1
	config.Timing = elevconfig.Timing{
		MovementDuration:    10 * time.Millisecond,
		DoorOpeningDuration: 5 * time.Millisecond,
		DoorOpenDuration:    30 * time.Millisecond,
		DoorClosingDuration: 5 * time.Millisecond,
		EgressGraceDuration: 5 * time.Millisecond,
		StopSettleDuration:  10 * time.Millisecond,
		IdlePollInterval:    10 * time.Millisecond,
	}
	return config
}

func startBuilding(t *testing.T, config elevconfig.Config) *Building {
	t.Helper()
	building, err := NewBuilding(config)
	if err != nil {
		t.Fatalf("NewBuilding() = %v", err)
	}
	if err := building.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	t.Cleanup(func() {
		if building.IsRunning() {
			building.Stop()
		}
	})
	return building
}

func findEvent(t *testing.T, events []elevtrace.Event, actor string, action string) elevtrace.Event {
	t.Helper()
	for _, event := range events {
		if event.Actor == actor && event.Action == action {
			return event
		}
	}
	t.Fatalf("no event %q from %s", action, actor)
	return elevtrace.Event{}
}

func TestSingleRiderExits(t *testing.T) {
	building := startBuilding(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	err := building.RunScenario(ctx, []elevutils.Trip{{ID: 0, StartFloor: 1, DestinationFloor: 2}})
	if err != nil {
		t.Fatalf("RunScenario() = %v, expected nil", err)
	}

	rider := building.Riders()[0]
	if rider.State() != elevconsts.Exited {
		t.Errorf("rider state = %v, expected %v", rider.State(), elevconsts.Exited)
	}

	elevator := building.Controller.Elevator()
	if elevator.Floor() != 2 {
		t.Errorf("elevator floor = %d, expected 2", elevator.Floor())
	}
	if len(elevator.Calls()) != 0 || len(elevator.Destinations()) != 0 {
		t.Errorf("calls %v destinations %v, expected both empty", elevator.Calls(), elevator.Destinations())
	}
	if err := building.VerifyTrace(); err != nil {
		t.Errorf("VerifyTrace() = %v", err)
	}
}

func TestTwoRidersNoDeadlock(t *testing.T) {
	building := startBuilding(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	if _, err := building.SpawnRider(0, 1, 2, elevconsts.Up); err != nil {
		t.Fatalf("SpawnRider() = %v", err)
	}
	if _, err := building.SpawnRider(1, 2, 0, elevconsts.Down); err != nil {
		t.Fatalf("SpawnRider() = %v", err)
	}

	if err := building.WaitForRiders(ctx); err != nil {
		t.Fatalf("WaitForRiders() = %v, expected nil", err)
	}
	if err := building.WaitUntilIdle(ctx); err != nil {
		t.Fatalf("WaitUntilIdle() = %v, expected nil", err)
	}

	for _, rider := range building.Riders() {
		if rider.State() != elevconsts.Exited {
			t.Errorf("%s state = %v, expected %v", rider.Name(), rider.State(), elevconsts.Exited)
		}
	}
	if err := building.VerifyTrace(); err != nil {
		t.Errorf("VerifyTrace() = %v", err)
	}
	if building.Controller.OpenDoorCount() != 0 {
		t.Errorf("OpenDoorCount() = %d when idle", building.Controller.OpenDoorCount())
	}
}

func TestRiderDistanceMatchesFloorChanges(t *testing.T) {
	building := startBuilding(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	rider, err := building.SpawnRider(0, 0, 2, elevconsts.Up)
	if err != nil {
		t.Fatalf("SpawnRider() = %v", err)
	}
	if err := building.WaitForRiders(ctx); err != nil {
		t.Fatalf("WaitForRiders() = %v", err)
	}

	events := building.Trace.Events()
	boarded := findEvent(t, events, rider.Name(), "boarded at floor 0")
	arrived := findEvent(t, events, rider.Name(), "destination reached: floor 2")

	if n := elevcontroller.CountFloorChanges(events, boarded.Seq, arrived.Seq); n != rider.ExpectedDistance() {
		t.Errorf("%d floor changes between boarding and arrival, expected %d", n, rider.ExpectedDistance())
	}
}

func TestManyRidersStaySafe(t *testing.T) {
	building := startBuilding(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	rng := rand.New(rand.NewPCG(4145, 2025))
	var trips []elevutils.Trip
	for id := 0; len(trips) < 8; id++ {
		start, destination := rng.IntN(3), rng.IntN(3)
		if start == destination {
			continue
		}
		trips = append(trips, elevutils.Trip{ID: id, StartFloor: start, DestinationFloor: destination})
	}

	if err := building.RunScenario(ctx, trips); err != nil {
		t.Fatalf("RunScenario() = %v, expected nil", err)
	}

	outcomes := building.Outcomes()
	if outcomes[elevconsts.Exited]+outcomes[elevconsts.MissedBoarding] != len(trips) {
		t.Errorf("Outcomes() = %v, expected every rider to exit or miss the door", outcomes)
	}
	if err := building.VerifyTrace(); err != nil {
		t.Errorf("VerifyTrace() = %v", err)
	}
}

func TestSpawnRiderErrors(t *testing.T) {
	building, err := NewBuilding(testConfig())
	if err != nil {
		t.Fatalf("NewBuilding() = %v", err)
	}

	if _, err := building.SpawnRider(0, 0, 1, elevconsts.Up); !errors.Is(err, ErrNotRunning) {
		t.Errorf("SpawnRider() before Start() = %v, expected %v", err, ErrNotRunning)
	}

	building.Start()
	defer building.Stop()

	if _, err := building.SpawnRider(0, 0, 3, elevconsts.Up); !errors.Is(err, ErrFloorOutOfRange) {
		t.Errorf("SpawnRider(0, 3) = %v, expected %v", err, ErrFloorOutOfRange)
	}
	if _, err := building.SpawnRider(0, -1, 1, elevconsts.Up); !errors.Is(err, ErrFloorOutOfRange) {
		t.Errorf("SpawnRider(-1, 1) = %v, expected %v", err, ErrFloorOutOfRange)
	}
	if _, err := building.SpawnRider(0, 2, 0, elevconsts.Up); !errors.Is(err, elevrider.ErrDirectionMismatch) {
		t.Errorf("SpawnRider(2, 0, Up) = %v, expected %v", err, elevrider.ErrDirectionMismatch)
	}
	if len(building.Riders()) != 0 {
		t.Errorf("rejected riders were kept: %d", len(building.Riders()))
	}
}

func TestStartStop(t *testing.T) {
	building, err := NewBuilding(testConfig())
	if err != nil {
		t.Fatalf("NewBuilding() = %v", err)
	}

	if err := building.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() before Start() = %v, expected %v", err, ErrNotRunning)
	}
	if err := building.Start(); err != nil {
		t.Errorf("Start() = %v, expected nil", err)
	}
	if err := building.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, expected %v", err, ErrAlreadyRunning)
	}
	if err := building.Stop(); err != nil {
		t.Errorf("Stop() = %v, expected nil", err)
	}
	if building.IsRunning() {
		t.Errorf("IsRunning() = true after Stop()")
	}
}

func TestStopCancelsWaitingRiders(t *testing.T) {
	config := testConfig()
	config.Timing.DoorOpenDuration = time.Hour
	building := startBuilding(t, config)

	// the first rider holds the door at floor 0 open, so the second one never gets a door
	first, _ := building.SpawnRider(0, 0, 1, elevconsts.Up)
	second, _ := building.SpawnRider(1, 2, 0, elevconsts.Down)

	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()
	if err := building.Controller.WaitForDoorOpen(ctx, 0); err != nil {
		t.Fatalf("WaitForDoorOpen(0) = %v", err)
	}

	if err := building.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if first.State() != elevconsts.Cancelled || second.State() != elevconsts.Cancelled {
		t.Errorf("rider states %v and %v after Stop(), expected both Cancelled", first.State(), second.State())
	}
	if building.Controller.OpenDoorCount() != 0 {
		t.Errorf("OpenDoorCount() = %d after Stop(), expected 0", building.Controller.OpenDoorCount())
	}
	if err := building.VerifyTrace(); err != nil {
		t.Errorf("VerifyTrace() = %v", err)
	}
}

func TestNewBuildingDefaults(t *testing.T) {
	config := testConfig()
	config.Identifier = ""
	building, err := NewBuilding(config)
	if err != nil {
		t.Fatalf("NewBuilding() = %v", err)
	}
	if len(building.MetaData.Identifier) != IDENTIFIER_DEFAULT_LEN {
		t.Errorf("generated identifier %q has length %d, expected %d",
			building.MetaData.Identifier, len(building.MetaData.Identifier), IDENTIFIER_DEFAULT_LEN)
	}
	if building.MetaData.RunID != building.Trace.RunID().String() {
		t.Errorf("metadata run id %s does not match the trace", building.MetaData.RunID)
	}

	config.LowestFloor = 5
	if _, err := NewBuilding(config); !errors.Is(err, elevconfig.ErrInvalidConfig) {
		t.Errorf("NewBuilding() with inverted floors = %v, expected %v", err, elevconfig.ErrInvalidConfig)
	}
}

func TestPrintStatus(t *testing.T) {
	building := startBuilding(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), TEST_TIMEOUT)
	defer cancel()

	if err := building.RunScenario(ctx, []elevutils.Trip{{ID: 0, StartFloor: 0, DestinationFloor: 1}}); err != nil {
		t.Fatalf("RunScenario() = %v", err)
	}
	building.PrintStatus()

	if outcomes := building.Outcomes(); outcomes[elevconsts.Exited] != 1 {
		t.Errorf("Outcomes() = %v, expected one exited rider", outcomes)
	}
}
