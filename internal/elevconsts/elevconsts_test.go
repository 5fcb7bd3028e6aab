package elevconsts

import "testing"

func TestDirnString(t *testing.T) {
	dirnArray := []Dirn{Up, Down, Idle, Dirn(7)}
	dirnStringArray := []string{"Up", "Down", "Idle", "Undefined"}

	for index, dirn := range dirnArray {
		if dirn.String() != dirnStringArray[index] {
			t.Errorf("Dirn.String() returned %v, expected %v", dirn.String(), dirnStringArray[index])
		}
	}
}

func TestDirnOpposite(t *testing.T) {
	testCases := []struct {
		dirn     Dirn
		expected Dirn
	}{
		{Up, Down},
		{Down, Up},
		{Idle, Up},
	}

	for _, tc := range testCases {
		if tc.dirn.Opposite() != tc.expected {
			t.Errorf("%v.Opposite() = %v, expected %v", tc.dirn, tc.dirn.Opposite(), tc.expected)
		}
	}
}

func TestDirnBetween(t *testing.T) {
	testCases := []struct {
		from, to int
		expected Dirn
	}{
		{0, 2, Up},
		{2, 0, Down},
		{1, 1, Idle},
		{-3, -1, Up},
	}

	for _, tc := range testCases {
		if dirn := DirnBetween(tc.from, tc.to); dirn != tc.expected {
			t.Errorf("DirnBetween(%d, %d) = %v, expected %v", tc.from, tc.to, dirn, tc.expected)
		}
	}
}

func TestDoorStateString(t *testing.T) {
	doorStateArray := []DoorState{Closed, Opening, Open, Closing, DoorState(42)}
	doorStateStringArray := []string{"DS_Closed", "DS_Opening", "DS_Open", "DS_Closing", "DS_UNDEFINED"}

	for index, ds := range doorStateArray {
		if ds.String() != doorStateStringArray[index] {
			t.Errorf("DoorState.String() returned %v, expected %v", ds.String(), doorStateStringArray[index])
		}
	}
}

func TestRiderStateTerminal(t *testing.T) {
	terminal := map[RiderState]bool{
		Declined:       true,
		MissedBoarding: true,
		Exited:         true,
		Cancelled:      true,
	}

	for rs := Created; rs <= Cancelled; rs++ {
		if rs.Terminal() != terminal[rs] {
			t.Errorf("%v.Terminal() = %v, expected %v", rs, rs.Terminal(), terminal[rs])
		}
		if rs.String() == "RS_UNDEFINED" {
			t.Errorf("RiderState(%d).String() is undefined", int(rs))
		}
	}
}
