package elevutils

import (
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > githash.txt"
//go:embed githash.txt
var gitHash string

func GetGitHash() string {
	return strings.TrimSpace(gitHash)
}

var ErrInvalidTrip = errors.New("invalid trip")

// Trip is one rider to spawn: an id and the floors it travels between.
type Trip struct {
	ID               int
	StartFloor       int
	DestinationFloor int
}

// ParseTrip reads "id:start:destination".
func ParseTrip(value string) (Trip, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return Trip{}, fmt.Errorf("%w: %q, expected id:start:destination", ErrInvalidTrip, value)
	}

	values := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Trip{}, fmt.Errorf("%w: %q: %v", ErrInvalidTrip, value, err)
		}
		values[i] = n
	}
	return Trip{ID: values[0], StartFloor: values[1], DestinationFloor: values[2]}, nil
}

func (t Trip) String() string {
	return fmt.Sprintf("%d:%d:%d", t.ID, t.StartFloor, t.DestinationFloor)
}

type tripList []Trip

func (l *tripList) String() string {
	trips := make([]string, len(*l))
	for i, trip := range *l {
		trips[i] = trip.String()
	}
	return strings.Join(trips, ",")
}

func (l *tripList) Set(value string) error {
	trip, err := ParseTrip(value)
	if err != nil {
		return err
	}
	*l = append(*l, trip)
	return nil
}

type Options struct {
	ConfigPath string
	EnvPath    string
	Identifier string
	LogLevel   string
	Timeout    time.Duration
	Trips      []Trip
	Help       bool
	Version    bool
}

// ParseCmdArgs parses args without touching the process-wide flag set.
func ParseCmdArgs(name string, args []string) (Options, *flag.FlagSet, error) {
	var options Options
	var trips tripList

	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&options.Help, "help", false, "Show Help Window")
	flagSet.BoolVar(&options.Version, "version", false, "Show Version")
	flagSet.StringVar(&options.ConfigPath, "config", "", "Path to a YAML config file. Defaults to built-in values")
	flagSet.StringVar(&options.EnvPath, "env", "", "Path to a .env file with ELEVATOR_* overrides")
	flagSet.StringVar(&options.Identifier, "id", "", "Set the identifier of the building. Defaults to random string")
	flagSet.StringVar(&options.LogLevel, "loglevel", "", "Log level (trace, debug, info, warn, error, off). Overrides the config")
	flagSet.DurationVar(&options.Timeout, "timeout", time.Minute, "Give up on the scenario after this long")
	flagSet.Var(&trips, "rider", "Rider as id:start:destination. Repeat for more riders")

	err := flagSet.Parse(args)
	options.Trips = trips
	if err != nil {
		return options, flagSet, err
	}
	if options.Timeout <= 0 {
		return options, flagSet, fmt.Errorf("timeout must be positive, got %v", options.Timeout)
	}
	return options, flagSet, nil
}

func ProcessCmdArgs() Options {
	options, flagSet, err := ParseCmdArgs(os.Args[0], os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		options.Help = true
	} else if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if options.Version {
		fmt.Println("Version:", GetGitHash())
		os.Exit(0)
	}

	if options.Help {
		fmt.Println("Usage: ./elevatorsim [OPTIONS]")
		fmt.Println("Single elevator building simulator")
		fmt.Println()
		fmt.Println("Options:")
		flagSet.SetOutput(os.Stdout)
		flagSet.PrintDefaults()
		os.Exit(0)
	}

	return options
}
