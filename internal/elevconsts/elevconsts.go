package elevconsts

type Dirn int

const (
	Down Dirn = -1
	Idle Dirn = 0
	Up   Dirn = 1
)

func (d Dirn) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Idle:
		return "Idle"
	default:
		return "Undefined"
	}
}

// Opposite returns Down for Up and Up for Down. Idle has no opposite and maps to Up,
// which makes an idle scan look upward first.
func (d Dirn) Opposite() Dirn {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	default:
		return Up
	}
}

// DirnBetween is the direction of travel from one floor to another.
func DirnBetween(from, to int) Dirn {
	switch {
	case to > from:
		return Up
	case to < from:
		return Down
	default:
		return Idle
	}
}

type DoorState int

const (
	Closed DoorState = iota // 0
	Opening
	Open
	Closing
)

func (ds DoorState) String() string {
	switch ds {
	case Closed:
		return "DS_Closed"
	case Opening:
		return "DS_Opening"
	case Open:
		return "DS_Open"
	case Closing:
		return "DS_Closing"
	default:
		return "DS_UNDEFINED"
	}
}

type RiderState int

const (
	Created RiderState = iota
	CallPlaced
	WaitingAtDoor
	Declined
	MissedBoarding
	Boarded
	DestinationSet
	WaitingArrival
	Arrived
	Exited
	Cancelled
)

func (rs RiderState) String() string {
	switch rs {
	case Created:
		return "RS_Created"
	case CallPlaced:
		return "RS_CallPlaced"
	case WaitingAtDoor:
		return "RS_WaitingAtDoor"
	case Declined:
		return "RS_Declined"
	case MissedBoarding:
		return "RS_MissedBoarding"
	case Boarded:
		return "RS_Boarded"
	case DestinationSet:
		return "RS_DestinationSet"
	case WaitingArrival:
		return "RS_WaitingArrival"
	case Arrived:
		return "RS_Arrived"
	case Exited:
		return "RS_Exited"
	case Cancelled:
		return "RS_Cancelled"
	default:
		return "RS_UNDEFINED"
	}
}

// Terminal reports whether a rider in this state has finished its workflow.
func (rs RiderState) Terminal() bool {
	switch rs {
	case Declined, MissedBoarding, Exited, Cancelled:
		return true
	}
	return false
}
