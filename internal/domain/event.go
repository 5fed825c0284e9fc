package domain

import "github.com/google/uuid"

// EventKind is the closed set of notifications the engine emits.
// Presentation layers map each kind to a rendered message.
type EventKind string

const (
	EventCreated           EventKind = "created"
	EventPrivateSent       EventKind = "private-sent"
	EventPrivateReceived   EventKind = "private-received"
	EventAccepted          EventKind = "accepted"
	EventResolvedWin       EventKind = "resolved-win"
	EventResolvedLose      EventKind = "resolved-lose"
	EventCanceled          EventKind = "canceled"
	EventExpired           EventKind = "expired"
	EventInsufficientFunds EventKind = "insufficient-funds"
	EventAlreadyActive     EventKind = "already-active"
	EventTargetBusy        EventKind = "target-busy"
	EventLimitExceeded     EventKind = "limit-exceeded"
	EventBusy              EventKind = "busy"
	EventNotFound          EventKind = "not-found"
	EventSelfAccept        EventKind = "self-accept"
)

// Event is a fire-and-forget notification. To is the participant the
// event is addressed to; Other is the counterparty when one exists.
// Winnings and Tax are only set on resolution events.
type Event struct {
	Kind     EventKind
	WagerID  uuid.UUID
	To       uuid.UUID
	Other    uuid.UUID
	Amount   float64
	Winnings float64
	Tax      float64
}
