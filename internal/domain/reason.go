package domain

// CancelReason says why a wager is being taken out of play. Each reason
// maps to a terminal state and the event both sides should receive;
// the mapping lives in one lookup table so a new reason cannot pick up
// inconsistent behavior from scattered conditionals.
type CancelReason int

const (
	ReasonExpired CancelReason = iota
	ReasonCanceled
	ReasonDenied
	ReasonCreatorOffline
	ReasonCreatorQuit
	ReasonTargetQuit
	ReasonShutdown
)

func (r CancelReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonCanceled:
		return "canceled"
	case ReasonDenied:
		return "denied"
	case ReasonCreatorOffline:
		return "creator-offline"
	case ReasonCreatorQuit:
		return "creator-quit"
	case ReasonTargetQuit:
		return "target-quit"
	case ReasonShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// CancelOutcome is what a cancellation reason resolves to.
type CancelOutcome struct {
	State        State
	Event        EventKind
	NotifyTarget bool // whether the private target hears about it
}

var cancelOutcomes = map[CancelReason]CancelOutcome{
	ReasonExpired:        {State: StateExpired, Event: EventExpired, NotifyTarget: true},
	ReasonCanceled:       {State: StateCanceled, Event: EventCanceled, NotifyTarget: true},
	ReasonDenied:         {State: StateCanceled, Event: EventCanceled, NotifyTarget: false},
	ReasonCreatorOffline: {State: StateCanceled, Event: EventCanceled, NotifyTarget: true},
	ReasonCreatorQuit:    {State: StateCanceled, Event: EventCanceled, NotifyTarget: true},
	ReasonTargetQuit:     {State: StateCanceled, Event: EventCanceled, NotifyTarget: true},
	ReasonShutdown:       {State: StateCanceled, Event: EventCanceled, NotifyTarget: true},
}

// Outcome returns the terminal state and notification for the reason.
func (r CancelReason) Outcome() CancelOutcome {
	if out, ok := cancelOutcomes[r]; ok {
		return out
	}
	return CancelOutcome{State: StateCanceled, Event: EventCanceled, NotifyTarget: true}
}
