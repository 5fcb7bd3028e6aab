package elevstate

import (
	"maps"
	"slices"

	"github.com/aymen-Dahmoun/elevatorcontroller/internal/elevconsts"
)

// State is the plain data of the elevator. It carries no lock; Elevator guards it.
// Calls and Destinations map a floor to the sequence number of its latest insertion.
type State struct {
	LowestFloor  int
	HighestFloor int
	Floor        int
	Direction    elevconsts.Dirn
	Calls        map[int]uint64
	Destinations map[int]uint64
}

func NewState(lowestFloor int, highestFloor int) State {
	return State{
		LowestFloor:  lowestFloor,
		HighestFloor: highestFloor,
		Floor:        lowestFloor,
		Direction:    elevconsts.Idle,
		Calls:        make(map[int]uint64),
		Destinations: make(map[int]uint64),
	}
}

func (s *State) InRange(floor int) bool {
	return floor >= s.LowestFloor && floor <= s.HighestFloor
}

func (s *State) PendingAt(floor int) bool {
	_, call := s.Calls[floor]
	_, destination := s.Destinations[floor]
	return call || destination
}

func (s *State) Empty() bool {
	return len(s.Calls) == 0 && len(s.Destinations) == 0
}

func (s *State) boundary(dirn elevconsts.Dirn) int {
	if dirn == elevconsts.Down {
		return s.LowestFloor
	}
	return s.HighestFloor
}

func (s *State) AtBoundary(dirn elevconsts.Dirn) bool {
	switch dirn {
	case elevconsts.Up:
		return s.Floor >= s.HighestFloor
	case elevconsts.Down:
		return s.Floor <= s.LowestFloor
	default:
		return false
	}
}

// pendingToward reports whether any request lies beyond the current floor in dirn,
// up to and including the boundary of that direction.
func (s *State) pendingToward(dirn elevconsts.Dirn) bool {
	if dirn == elevconsts.Idle {
		return false
	}
	end := s.boundary(dirn)
	for floor := s.Floor + int(dirn); ; floor += int(dirn) {
		if (dirn == elevconsts.Up && floor > end) || (dirn == elevconsts.Down && floor < end) {
			return false
		}
		if s.PendingAt(floor) {
			return true
		}
	}
}

// ChooseDirection is the SCAN rule. A call at the current floor gives Idle, since the elevator
// must stop here first. Otherwise the current direction is kept while work remains ahead of it,
// reversed when work remains only behind, and Idle when there is none.
// An idle elevator looks upward first, then downward.
func (s *State) ChooseDirection() elevconsts.Dirn {
	if _, ok := s.Calls[s.Floor]; ok {
		return elevconsts.Idle
	}

	current := s.Direction
	if current == elevconsts.Idle {
		current = elevconsts.Up
	}
	if !s.AtBoundary(current) && s.pendingToward(current) {
		return current
	}
	opposite := current.Opposite()
	if !s.AtBoundary(opposite) && s.pendingToward(opposite) {
		return opposite
	}
	return elevconsts.Idle
}

// MoveOneFloor steps one floor in the current direction. At the boundary of that direction it only
// flips the direction and the move happens on the next call.
func (s *State) MoveOneFloor() (moved bool, reversed bool) {
	if s.Direction == elevconsts.Idle {
		return false, false
	}
	if s.AtBoundary(s.Direction) {
		s.Direction = s.Direction.Opposite()
		return false, true
	}
	s.Floor += int(s.Direction)
	return true, false
}

func (s *State) ClearAt(floor int) {
	delete(s.Calls, floor)
	delete(s.Destinations, floor)
}

// ClearAtUpTo removes the requests at floor inserted with a sequence number not above mark.
func (s *State) ClearAtUpTo(floor int, mark uint64) {
	if seq, ok := s.Calls[floor]; ok && seq <= mark {
		delete(s.Calls, floor)
	}
	if seq, ok := s.Destinations[floor]; ok && seq <= mark {
		delete(s.Destinations, floor)
	}
}

func sortedFloors(requests map[int]uint64) []int {
	return slices.Sorted(maps.Keys(requests))
}
