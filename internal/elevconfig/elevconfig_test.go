package elevconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
	"github.com/rs/zerolog"
)

func init() {
	logger.GetLoggerConfigured(zerolog.Disabled)
}

func writeTempFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, expected nil", err)
	}
	if c.LowestFloor != 0 || c.HighestFloor != 2 {
		t.Errorf("Default() floors = [%d, %d], expected [0, 2]", c.LowestFloor, c.HighestFloor)
	}
	if c.BoardingProbability != 0.9 {
		t.Errorf("Default().BoardingProbability = %v, expected 0.9", c.BoardingProbability)
	}
}

func TestLoad(t *testing.T) {
	path := writeTempFile(t, "elevator_config.yaml", `
Identifier: lobby
HighestFloor: 5
Timing:
  MovementDuration: 10ms
  DoorOpenDuration: 1s
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v, expected nil", err)
	}
	if c.Identifier != "lobby" {
		t.Errorf("Identifier = %q, expected %q", c.Identifier, "lobby")
	}
	if c.HighestFloor != 5 {
		t.Errorf("HighestFloor = %d, expected 5", c.HighestFloor)
	}
	if c.Timing.MovementDuration != 10*time.Millisecond {
		t.Errorf("MovementDuration = %v, expected 10ms", c.Timing.MovementDuration)
	}
	if c.Timing.DoorOpenDuration != time.Second {
		t.Errorf("DoorOpenDuration = %v, expected 1s", c.Timing.DoorOpenDuration)
	}
	// untouched keys keep their defaults
	if c.Timing.DoorClosingDuration != DefaultTiming().DoorClosingDuration {
		t.Errorf("DoorClosingDuration = %v, expected default %v", c.Timing.DoorClosingDuration, DefaultTiming().DoorClosingDuration)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() = %v, expected an os.ErrNotExist error", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := writeTempFile(t, "elevator_config.yaml", "LowestFloor: 4\nHighestFloor: 1\n")

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() = %v, expected %v", err, ErrInvalidConfig)
	}
}

func TestApplyEnvFile(t *testing.T) {
	path := writeTempFile(t, ".env", `
ELEVATOR_IDENTIFIER=east
ELEVATOR_HIGHEST_FLOOR=7
ELEVATOR_BOARDING_PROBABILITY=1
ELEVATOR_MOVEMENT_DURATION=5ms
ELEVATOR_WAIT_TIMEOUT=2s
UNRELATED=value
`)

	c := Default()
	if err := c.ApplyEnvFile(path); err != nil {
		t.Fatalf("ApplyEnvFile() = %v, expected nil", err)
	}
	if c.Identifier != "east" || c.HighestFloor != 7 || c.BoardingProbability != 1 {
		t.Errorf("ApplyEnvFile() gave %+v", c)
	}
	if c.Timing.MovementDuration != 5*time.Millisecond || c.Timing.WaitTimeout != 2*time.Second {
		t.Errorf("ApplyEnvFile() timing = %+v", c.Timing)
	}
}

func TestApplyEnvMapErrors(t *testing.T) {
	testCases := []map[string]string{
		{"ELEVATOR_HIGHEST_FLOOR": "three"},
		{"ELEVATOR_MOVEMENT_DURATION": "fast"},
		{"ELEVATOR_BOARDING_PROBABILITY": "1.5"},
		{"ELEVATOR_DOOR_OPEN_DURATION": "0s"},
		{"ELEVATOR_LOWEST_FLOOR": "3"},
	}

	for _, env := range testCases {
		c := Default()
		if err := c.ApplyEnvMap(env); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ApplyEnvMap(%v) = %v, expected %v", env, err, ErrInvalidConfig)
		}
	}
}

func TestInRange(t *testing.T) {
	c := Default()
	for floor, expected := range map[int]bool{-1: false, 0: true, 1: true, 2: true, 3: false} {
		if c.InRange(floor) != expected {
			t.Errorf("InRange(%d) = %v, expected %v", floor, c.InRange(floor), expected)
		}
	}
}

func TestResolve(t *testing.T) {
	configPath := writeTempFile(t, "elevator_config.yaml", "HighestFloor: 4\nLogLevel: debug\n")
	envPath := writeTempFile(t, ".env", "ELEVATOR_HIGHEST_FLOOR=6\n")

	c, err := Resolve(configPath, envPath)
	if err != nil {
		t.Fatalf("Resolve() = %v, expected nil", err)
	}
	// the env file wins over the YAML file
	if c.HighestFloor != 6 || c.LogLevel != "debug" {
		t.Errorf("Resolve() = %+v, expected HighestFloor 6 and LogLevel debug", c)
	}

	c, err = Resolve("", "")
	if err != nil || c.HighestFloor != Default().HighestFloor {
		t.Errorf("Resolve(\"\", \"\") = (%+v, %v), expected the defaults", c, err)
	}
}

func TestShippedConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "elevator_config.yaml"))
	if err != nil {
		t.Fatalf("Load(elevator_config.yaml) = %v, expected nil", err)
	}
	if c.Timing != DefaultTiming() {
		t.Errorf("shipped timing %+v differs from DefaultTiming() %+v", c.Timing, DefaultTiming())
	}
}
