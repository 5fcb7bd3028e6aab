package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevator"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconfig"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevutils"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
	"github.com/rs/zerolog"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

// one rider going up from the middle floor, one going down from the top
var defaultTrips = []elevutils.Trip{
	{ID: 0, StartFloor: 1, DestinationFloor: 2},
	{ID: 1, StartFloor: 2, DestinationFloor: 0},
}

func main() {
	options := elevutils.ProcessCmdArgs()

	config, err := elevconfig.Resolve(options.ConfigPath, options.EnvPath)
	if err != nil {
		Logger.Error().Msgf("Loading config: %v", err)
		os.Exit(1)
	}
	if options.Identifier != "" {
		config.Identifier = options.Identifier
	}
	if options.LogLevel != "" {
		config.LogLevel = options.LogLevel
	}
	logger.GetLoggerConfigured(logger.ParseLevel(config.LogLevel))

	trips := options.Trips
	if len(trips) == 0 {
		trips = defaultTrips
	}

	// Starting Programme
	Logger.Info().Msg("Starting Elevator Simulation")

	building, err := elevator.NewBuilding(config)
	if err != nil {
		Logger.Error().Msgf("Creating building: %v", err)
		os.Exit(1)
	}
	building.Start()

	ctx, cancel := context.WithTimeout(context.Background(), options.Timeout)
	err = building.RunScenario(ctx, trips)
	cancel()
	building.Stop()

	fmt.Print(building.Trace.Format())

	for _, rider := range building.Riders() {
		Logger.Info().Msgf("%s (%d -> %d): %v", rider.Name(), rider.StartFloor(), rider.DestinationFloor(), rider.State())
	}

	exitCode := 0
	if err != nil {
		Logger.Error().Msgf("Scenario did not finish: %v", err)
		exitCode = 1
	}
	if err := building.VerifyTrace(); err != nil {
		Logger.Error().Msgf("Safety check failed: %v", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}
