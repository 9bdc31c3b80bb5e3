package constants

// AircraftStatus is the operational state of a fleet aircraft.
type AircraftStatus string

const (
	AircraftAvailable   AircraftStatus = "Available"
	AircraftBooked      AircraftStatus = "Booked"
	AircraftInFlight    AircraftStatus = "InFlight"
	AircraftMaintenance AircraftStatus = "Maintenance"
	AircraftGrounded    AircraftStatus = "Grounded"
)

func (s AircraftStatus) String() string { return string(s) }

// BidStatus is the lifecycle state of a flight reservation.
type BidStatus string

const (
	BidActive    BidStatus = "active"
	BidConsumed  BidStatus = "consumed"
	BidCancelled BidStatus = "cancelled"
	BidExpired   BidStatus = "expired"
)

func (s BidStatus) String() string { return string(s) }

// Terminal reports whether no further bid transitions are legal.
func (s BidStatus) Terminal() bool {
	return s == BidConsumed || s == BidCancelled || s == BidExpired
}

// SessionStatus is the state of an in-progress flight session.
type SessionStatus string

const (
	SessionBooked    SessionStatus = "booked"
	SessionInFlight  SessionStatus = "in_flight"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
	SessionReported  SessionStatus = "reported"
)

func (s SessionStatus) String() string { return string(s) }

func (s SessionStatus) Terminal() bool {
	return s == SessionAbandoned || s == SessionReported
}

// sessionTransitions enumerates every legal session move. Anything absent
// is rejected with ErrInvalidTransition.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionBooked:    {SessionInFlight, SessionAbandoned},
	SessionInFlight:  {SessionCompleted, SessionAbandoned},
	SessionCompleted: {SessionReported},
}

// CanTransition reports whether from -> to is a legal session move.
func CanTransition(from, to SessionStatus) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApprovalStatus is the adjudication state of a PIREP.
type ApprovalStatus string

const (
	PirepPending  ApprovalStatus = "pending"
	PirepApproved ApprovalStatus = "approved"
	PirepRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) String() string { return string(s) }

func (s ApprovalStatus) Terminal() bool {
	return s == PirepApproved || s == PirepRejected
}

// SubmissionChannel distinguishes tracker-fed reports from manual filings.
type SubmissionChannel string

const (
	ChannelAutomatic SubmissionChannel = "automatic"
	ChannelManual    SubmissionChannel = "manual"
)

func (c SubmissionChannel) String() string { return string(c) }

// RepairTier selects how far a repair restores aircraft condition.
type RepairTier string

const (
	RepairMinimum RepairTier = "MINIMUM"
	RepairFull    RepairTier = "FULL"
)
