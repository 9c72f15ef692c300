package employee

import "time"

type Employee struct {
	ID           string
	CompanyID    string
	FullName     string
	EmployeeCode string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
