package punch

import (
	"sort"
	"time"
)

// TypeNone marks the state before the first punch of a work day.
const TypeNone Type = ""

// transitions is the full legality table of the punch state machine:
//
//	none          -> IN
//	IN, RESUME    -> OUT, BREAK
//	OUT           -> IN
//	BREAK         -> RESUME
var transitions = map[Type][]Type{
	TypeNone:   {TypeIn},
	TypeIn:     {TypeOut, TypeBreak},
	TypeResume: {TypeOut, TypeBreak},
	TypeOut:    {TypeIn},
	TypeBreak:  {TypeResume},
}

// AllowedNext returns the punch types that may legally follow last.
func AllowedNext(last Type) []Type {
	next, ok := transitions[last]
	if !ok {
		return nil
	}
	out := make([]Type, len(next))
	copy(out, next)
	return out
}

// CanFollow reports whether next is a legal successor of last.
func CanFollow(last, next Type) bool {
	for _, t := range transitions[last] {
		if t == next {
			return true
		}
	}
	return false
}

// rejectionReason maps an illegal (last, requested) pair to the hint shown
// to the employee.
func rejectionReason(last, requested Type) string {
	switch requested {
	case TypeIn:
		if last == TypeIn || last == TypeResume {
			return "you are already clocked in"
		}
		return "resume your open break before clocking in"
	case TypeOut:
		if last == TypeNone || last == TypeOut {
			return "you have not clocked in yet"
		}
		return "resume your open break before clocking out"
	case TypeBreak:
		if last == TypeBreak {
			return "a break is already in progress"
		}
		return "clock in before starting a break"
	case TypeResume:
		return "there is no open break to resume"
	}
	return "punch type " + string(requested) + " is not allowed here"
}

// SortEvents orders punches ascending by timestamp, ties broken by
// insertion order (created_at, then id). Storage normally returns this
// order already; callers resort defensively.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
}

// ValidateNext decides whether requested may be appended after the ordered
// punches of the current work day. It is a pure function of the sequence
// and the requested type.
func ValidateNext(ordered []Event, requested Type) error {
	SortEvents(ordered)

	last := TypeNone
	openBreak := false
	for _, e := range ordered {
		switch e.Type {
		case TypeBreak:
			openBreak = true
		case TypeResume:
			openBreak = false
		}
		last = e.Type
	}

	// An unresolved break blocks everything except RESUME, even if later
	// edits left punches after it.
	if openBreak && requested != TypeResume {
		return &SequenceError{
			Last:      last,
			Requested: requested,
			Reason:    "resume your open break before punching " + string(requested),
		}
	}

	if !CanFollow(last, requested) {
		return &SequenceError{
			Last:      last,
			Requested: requested,
			Reason:    rejectionReason(last, requested),
		}
	}

	return nil
}

// State is the live "what can this employee do right now" projection.
type State struct {
	Status        string // clocked_out | working | on_break
	LastType      Type
	LastTimestamp *time.Time
	AllowedNext   []Type
}

// ProjectState derives the live state from the ordered punches of the
// current work day. It must be recomputed per query, never cached across
// requests.
func ProjectState(events []Event) State {
	SortEvents(events)

	state := State{
		Status:      "clocked_out",
		LastType:    TypeNone,
		AllowedNext: AllowedNext(TypeNone),
	}
	if len(events) == 0 {
		return state
	}

	last := events[len(events)-1]
	ts := last.Timestamp
	state.LastType = last.Type
	state.LastTimestamp = &ts
	state.AllowedNext = AllowedNext(last.Type)

	switch last.Type {
	case TypeIn, TypeResume:
		state.Status = "working"
	case TypeBreak:
		state.Status = "on_break"
	default:
		state.Status = "clocked_out"
	}
	return state
}
