package main

import (
	"fmt"
	"os"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevator"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconfig"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevutils"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/logger"
	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

func printHelp() {
	fmt.Println("Keys:")
	fmt.Println("	0-9  pick the start floor, then the destination floor of a new rider")
	fmt.Println("	s    show the elevator status")
	fmt.Println("	t    print the event trace")
	fmt.Println("	h    show this help")
	fmt.Println("	q    quit (also Ctrl-C)")
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

	building, err := elevator.NewBuilding(config)
	if err != nil {
		Logger.Error().Msgf("Creating building: %v", err)
		os.Exit(1)
	}
	building.Start()
	defer building.Stop()

	printHelp()

	nextID := 0
	startFloor := -1
	for {
		char, key, err := keyboard.GetSingleKey()
		if err != nil {
			Logger.Error().Msgf("Error when getting key: %v", err)
			return
		}
		if key == keyboard.KeyCtrlC || key == keyboard.KeyEsc {
			return
		}

		switch {
		case char >= '0' && char <= '9':
			floor := int(char - '0')
			if startFloor < 0 {
				startFloor = floor
				fmt.Printf("start floor %d, pick a destination\n", floor)
				continue
			}
			_, err := building.SpawnRider(nextID, startFloor, floor, elevconsts.DirnBetween(startFloor, floor))
			if err != nil {
				fmt.Println("Cannot spawn rider:", err)
			} else {
				nextID++
			}
			startFloor = -1
		case char == 's' || char == 'S':
			building.PrintStatus()
		case char == 't' || char == 'T':
			fmt.Print(building.Trace.Format())
		case char == 'h' || char == 'H':
			printHelp()
		case char == 'q' || char == 'Q':
			return
		}
	}
}
