package elevstate

import (
	"time"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconfig"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
	"github.com/tiendc/go-deepcopy"
)

// StopDuration is the simulated time one stop takes: a full door cycle and the settle pause after it.
func StopDuration(timing elevconfig.Timing) time.Duration {
	return timing.DoorOpeningDuration +
		timing.DoorOpenDuration +
		timing.DoorClosingDuration +
		timing.EgressGraceDuration +
		timing.StopSettleDuration
}

// TimeToIdle runs the dispatch loop on a copy of s and returns the simulated time until no
// request is left. Requests added while the elevator runs are not accounted for.
func TimeToIdle(s State, timing elevconfig.Timing) time.Duration {
	var e State
	if err := deepcopy.Copy(&e, &s); err != nil {
		Log.Error().Msgf("copying elevator state: %v", err)
		return 0
	}

	duration := time.Duration(0)
	// every request costs at most a full sweep in each direction
	maxSteps := 2*(e.HighestFloor-e.LowestFloor+1)*(len(e.Calls)+len(e.Destinations)+1) + 2

	for step := 0; step < maxSteps; step++ {
		if e.PendingAt(e.Floor) {
			e.ClearAt(e.Floor)
			duration += StopDuration(timing)
			continue
		}

		dirn := e.ChooseDirection()
		if dirn == elevconsts.Idle {
			return duration
		}
		e.Direction = dirn
		if moved, _ := e.MoveOneFloor(); moved {
			duration += timing.MovementDuration
		}
	}

	Log.Warn().Msgf("time to idle did not converge after %d steps", maxSteps)
	return duration
}
