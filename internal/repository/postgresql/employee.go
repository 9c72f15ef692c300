package postgresql

import (
	"context"
	"fmt"

	"github.com/presensi-hq/presensi-backend-go/internal/domain/employee"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, full_name, employee_code, active, created_at, updated_at
		FROM employees
		WHERE id = $1
		  AND company_id = $2
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&emp.ID, &emp.CompanyID, &emp.FullName, &emp.EmployeeCode, &emp.Active,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

// ExistsInCompany implements employee.EmployeeRepository.
func (r *employeeRepository) ExistsInCompany(ctx context.Context, id string, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM employees
			WHERE id = $1
			  AND company_id = $2
			  AND active = TRUE
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, id, companyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee membership: %w", err)
	}

	return exists, nil
}

// ListActiveIDs implements employee.EmployeeRepository.
func (r *employeeRepository) ListActiveIDs(ctx context.Context, companyID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id FROM employees
		WHERE company_id = $1
		  AND active = TRUE
		ORDER BY full_name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return ids, nil
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}
