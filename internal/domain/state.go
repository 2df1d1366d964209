package domain

// State is the lifecycle state of the session's tenant binding.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateValid   State = "valid"
	StateInvalid State = "invalid"
)

// Event drives a tenant binding from one State to another.
type Event string

const (
	EventLoad     Event = "load"
	EventResolved Event = "resolved"
	EventFailed   Event = "failed"
	EventClear    Event = "clear"
)

// Transition defines a valid state change: an event moves the binding from Src to Dst.
type Transition struct {
	Event Event
	Src   State
	Dst   State
}

// ContextTransitions defines every valid change of the tenant binding.
// Loading -> Loading on load is a superseding request for another slug.
// There is no terminal state.
var ContextTransitions = []Transition{
	{Event: EventLoad, Src: StateEmpty, Dst: StateLoading},
	{Event: EventLoad, Src: StateValid, Dst: StateLoading},
	{Event: EventLoad, Src: StateInvalid, Dst: StateLoading},
	{Event: EventLoad, Src: StateLoading, Dst: StateLoading},
	{Event: EventResolved, Src: StateLoading, Dst: StateValid},
	{Event: EventFailed, Src: StateLoading, Dst: StateInvalid},
	{Event: EventClear, Src: StateValid, Dst: StateEmpty},
	{Event: EventClear, Src: StateInvalid, Dst: StateEmpty},
	{Event: EventClear, Src: StateLoading, Dst: StateEmpty},
	{Event: EventClear, Src: StateEmpty, Dst: StateEmpty},
}
