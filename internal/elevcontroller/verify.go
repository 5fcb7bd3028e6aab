package elevcontroller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevdoor"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevstate"
	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevtrace"
)

var (
	ErrTwoDoorsOpen       = errors.New("two doors open at once")
	ErrMovingWithDoorOpen = errors.New("elevator moving with a door open")
)

// VerifyTrace replays a trace and checks that no two doors were out of Closed at the same time
// and that no door was out of Closed while the elevator was moving.
func VerifyTrace(events []elevtrace.Event) error {
	openDoors := make(map[string]bool)
	moving := false

	for _, e := range events {
		switch e.Category {
		case elevtrace.Door:
			switch e.Action {
			case elevdoor.ACTION_OPENING:
				if moving {
					return fmt.Errorf("%w: %s at event %d", ErrMovingWithDoorOpen, e.Actor, e.Seq)
				}
				openDoors[e.Actor] = true
				if len(openDoors) > 1 {
					return fmt.Errorf("%w: %s at event %d", ErrTwoDoorsOpen, e.Actor, e.Seq)
				}
			case elevdoor.ACTION_CLOSED, elevdoor.ACTION_CLOSED_INTERRUPTED:
				delete(openDoors, e.Actor)
			}
		case elevtrace.Elevator:
			if e.Actor != elevstate.ELEVATOR_ACTOR {
				continue
			}
			switch e.Action {
			case elevstate.ACTION_STARTED_MOVING:
				if len(openDoors) > 0 {
					return fmt.Errorf("%w: started moving at event %d", ErrMovingWithDoorOpen, e.Seq)
				}
				moving = true
			case elevstate.ACTION_STOPPED_MOVING:
				moving = false
			}
		}
	}
	return nil
}

// CountFloorChanges counts the floor changes recorded strictly between two sequence numbers.
func CountFloorChanges(events []elevtrace.Event, afterSeq uint64, beforeSeq uint64) int {
	count := 0
	for _, e := range events {
		if e.Seq <= afterSeq || e.Seq >= beforeSeq {
			continue
		}
		if e.Category == elevtrace.Elevator && e.Actor == elevstate.ELEVATOR_ACTOR &&
			strings.HasPrefix(e.Action, elevstate.ACTION_FLOOR_PREFIX) {
			count++
		}
	}
	return count
}
