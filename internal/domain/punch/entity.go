package punch

import "time"

type Type string

const (
	TypeIn     Type = "IN"
	TypeOut    Type = "OUT"
	TypeBreak  Type = "BREAK"
	TypeResume Type = "RESUME"
)

var TypeValues = []string{
	string(TypeIn),
	string(TypeOut),
	string(TypeBreak),
	string(TypeResume),
}

var SourceValues = []string{"web", "mobile", "kiosk", "import"}

// Event is a single immutable clock punch. Timestamp changes go through
// the edit operation, which appends an EditLogEntry alongside.
type Event struct {
	ID           string
	EmployeeID   string
	CompanyID    string
	Type         Type
	Timestamp    time.Time
	Source       string
	Latitude     *float64
	Longitude    *float64
	IsRemoteWork bool
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO
	EmployeeName *string
}

// EditLogEntry is the append-only audit record for punch edits and deletes.
// NewTimestamp is nil when the punch was deleted.
type EditLogEntry struct {
	ID           string
	PunchID      string
	CompanyID    string
	ActorID      string
	OldTimestamp time.Time
	NewTimestamp *time.Time
	Reason       string
	CreatedAt    time.Time
}

type WorkDayStatus string

const (
	WorkDayStatusOpen   WorkDayStatus = "open"
	WorkDayStatusClosed WorkDayStatus = "closed"
)

// WorkDay is the derived daily summary keyed by (employee, company, date).
// It is always recomputed from the full punch window, never hand-edited.
type WorkDay struct {
	EmployeeID      string
	CompanyID       string
	Date            time.Time
	StartTime       time.Time
	EndTime         time.Time
	WorkedMinutes   int
	BreakMinutes    int
	OvertimeMinutes int
	Status          WorkDayStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
