package employee

import "context"

// EmployeeRepository covers the membership checks the punch and roster
// engines need; employee administration lives outside this service.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)

	// ExistsInCompany reports whether an active employee belongs to the
	// company. Used before punches and assignments are accepted.
	ExistsInCompany(ctx context.Context, id string, companyID string) (bool, error)

	// ListActiveIDs returns the ids of all active employees of a company.
	ListActiveIDs(ctx context.Context, companyID string) ([]string, error)
}
