package elevconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var Log = logger.GetLogger()

var ErrInvalidConfig = errors.New("invalid elevator config")

const ENV_PREFIX = "ELEVATOR_"

// Timing holds every simulated duration. WaitTimeout bounds each rider wait; zero means unbounded.
type Timing struct {
	MovementDuration    time.Duration `yaml:"MovementDuration"`
	DoorOpeningDuration time.Duration `yaml:"DoorOpeningDuration"`
	DoorOpenDuration    time.Duration `yaml:"DoorOpenDuration"`
	DoorClosingDuration time.Duration `yaml:"DoorClosingDuration"`
	EgressGraceDuration time.Duration `yaml:"EgressGraceDuration"`
	StopSettleDuration  time.Duration `yaml:"StopSettleDuration"`
	IdlePollInterval    time.Duration `yaml:"IdlePollInterval"`
	WaitTimeout         time.Duration `yaml:"WaitTimeout"`
}

type Config struct {
	Identifier          string  `yaml:"Identifier"`
	LowestFloor         int     `yaml:"LowestFloor"`
	HighestFloor        int     `yaml:"HighestFloor"`
	Timing              Timing  `yaml:"Timing"`
	BoardingProbability float64 `yaml:"BoardingProbability"`
	LogLevel            string  `yaml:"LogLevel"`
}

func DefaultTiming() Timing {
	return Timing{
		MovementDuration:    200 * time.Millisecond,
		DoorOpeningDuration: 50 * time.Millisecond,
		DoorOpenDuration:    300 * time.Millisecond,
		DoorClosingDuration: 50 * time.Millisecond,
		EgressGraceDuration: 50 * time.Millisecond,
		StopSettleDuration:  300 * time.Millisecond,
		IdlePollInterval:    100 * time.Millisecond,
		WaitTimeout:         0,
	}
}

func Default() Config {
	return Config{
		LowestFloor:         0,
		HighestFloor:        2,
		Timing:              DefaultTiming(),
		BoardingProbability: 0.9,
		LogLevel:            "info",
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file keep their default value.
func Load(path string) (Config, error) {
	c := Default()

	file, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer file.Close()

	err = yaml.NewDecoder(file).Decode(&c)
	if err != nil {
		return c, fmt.Errorf("decoding config %s: %w", path, err)
	}

	return c, c.Validate()
}

// ApplyEnvFile overrides fields from a .env file. See ApplyEnvMap for the keys.
func (c *Config) ApplyEnvFile(path string) error {
	envFile, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("reading env file %s: %w", path, err)
	}
	return c.ApplyEnvMap(envFile)
}

// ApplyEnvMap overrides fields from ELEVATOR_* keys. Unknown keys are ignored.
func (c *Config) ApplyEnvMap(env map[string]string) error {
	for key, value := range env {
		if !strings.HasPrefix(key, ENV_PREFIX) {
			continue
		}
		value = strings.TrimSpace(value)
		err := c.applyEnv(strings.TrimPrefix(key, ENV_PREFIX), value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, value, err)
		}
		Log.Debug().Msgf("config override %s=%s", key, value)
	}
	return c.Validate()
}

func (c *Config) applyEnv(key string, value string) error {
	var err error
	switch key {
	case "IDENTIFIER":
		c.Identifier = value
	case "LOWEST_FLOOR":
		c.LowestFloor, err = strconv.Atoi(value)
	case "HIGHEST_FLOOR":
		c.HighestFloor, err = strconv.Atoi(value)
	case "BOARDING_PROBABILITY":
		c.BoardingProbability, err = strconv.ParseFloat(value, 64)
	case "LOG_LEVEL":
		c.LogLevel = value
	case "MOVEMENT_DURATION":
		c.Timing.MovementDuration, err = time.ParseDuration(value)
	case "DOOR_OPENING_DURATION":
		c.Timing.DoorOpeningDuration, err = time.ParseDuration(value)
	case "DOOR_OPEN_DURATION":
		c.Timing.DoorOpenDuration, err = time.ParseDuration(value)
	case "DOOR_CLOSING_DURATION":
		c.Timing.DoorClosingDuration, err = time.ParseDuration(value)
	case "EGRESS_GRACE_DURATION":
		c.Timing.EgressGraceDuration, err = time.ParseDuration(value)
	case "STOP_SETTLE_DURATION":
		c.Timing.StopSettleDuration, err = time.ParseDuration(value)
	case "IDLE_POLL_INTERVAL":
		c.Timing.IdlePollInterval, err = time.ParseDuration(value)
	case "WAIT_TIMEOUT":
		c.Timing.WaitTimeout, err = time.ParseDuration(value)
	}
	return err
}

func (c Config) Validate() error {
	if c.LowestFloor > c.HighestFloor {
		return fmt.Errorf("%w: LowestFloor %d above HighestFloor %d", ErrInvalidConfig, c.LowestFloor, c.HighestFloor)
	}
	if c.BoardingProbability < 0 || c.BoardingProbability > 1 {
		return fmt.Errorf("%w: BoardingProbability %v outside [0, 1]", ErrInvalidConfig, c.BoardingProbability)
	}

	durations := map[string]time.Duration{
		"MovementDuration":    c.Timing.MovementDuration,
		"DoorOpeningDuration": c.Timing.DoorOpeningDuration,
		"DoorOpenDuration":    c.Timing.DoorOpenDuration,
		"DoorClosingDuration": c.Timing.DoorClosingDuration,
		"EgressGraceDuration": c.Timing.EgressGraceDuration,
		"StopSettleDuration":  c.Timing.StopSettleDuration,
		"IdlePollInterval":    c.Timing.IdlePollInterval,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, d)
		}
	}
	if c.Timing.WaitTimeout < 0 {
		return fmt.Errorf("%w: WaitTimeout must not be negative, got %v", ErrInvalidConfig, c.Timing.WaitTimeout)
	}
	return nil
}

// InRange reports whether floor lies in [LowestFloor, HighestFloor].
func (c Config) InRange(floor int) bool {
	return floor >= c.LowestFloor && floor <= c.HighestFloor
}

// Resolve builds the config from the defaults, an optional YAML file and an optional .env file, in that order.
func Resolve(configPath string, envPath string) (Config, error) {
	c := Default()
	var err error

	if configPath != "" {
		c, err = Load(configPath)
		if err != nil {
			return c, err
		}
	}
	if envPath != "" {
		err = c.ApplyEnvFile(envPath)
		if err != nil {
			return c, err
		}
	}
	return c, c.Validate()
}
