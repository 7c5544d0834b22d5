package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"familytree/internal/domain"
)

// PostgresFamiliesRepository implements FamiliesRepository over the
// relational schema (families, persons, family_members, person_parents).
type PostgresFamiliesRepository struct {
	db *sql.DB
}

func NewPostgresFamiliesRepository(db *sql.DB) *PostgresFamiliesRepository {
	return &PostgresFamiliesRepository{db: db}
}

var _ FamiliesRepository = (*PostgresFamiliesRepository)(nil)

func (r *PostgresFamiliesRepository) GetFamily(ctx context.Context, familyID int64) (*domain.FamilyRef, error) {
	var ref domain.FamilyRef
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM families WHERE id = $1`,
		familyID,
	).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFamilyNotFound
		}
		return nil, fmt.Errorf("failed to get family %d: %w", familyID, err)
	}
	return &ref, nil
}

func (r *PostgresFamiliesRepository) ListFamilies(ctx context.Context) ([]domain.FamilyRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM families ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	defer rows.Close()

	refs := []domain.FamilyRef{}
	for rows.Next() {
		var ref domain.FamilyRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	return refs, nil
}

func (r *PostgresFamiliesRepository) GetParents(ctx context.Context, familyID int64) ([]domain.Member, error) {
	// Fathers before mothers, stable by person id within a role.
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.first_name, p.last_name, p.gender, p.birth_date, fm.role
		FROM persons p
		JOIN family_members fm ON p.id = fm.person_id
		WHERE fm.family_id = $1 AND fm.role IN ('pere', 'mere')
		ORDER BY CASE fm.role WHEN 'pere' THEN 0 ELSE 1 END, p.id
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parents of family %d: %w", familyID, err)
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		var m domain.Member
		var role string
		if err := scanPerson(rows, &m.Person, &role); err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		m.Role = domain.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get parents of family %d: %w", familyID, err)
	}
	return members, nil
}

func (r *PostgresFamiliesRepository) GetChildren(ctx context.Context, familyID int64) ([]domain.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.first_name, p.last_name, p.gender, p.birth_date
		FROM persons p
		JOIN family_members fm ON p.id = fm.person_id
		WHERE fm.family_id = $1 AND fm.role = 'enfant'
		ORDER BY p.birth_date ASC NULLS LAST, p.id
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get children of family %d: %w", familyID, err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

func (r *PostgresFamiliesRepository) GetPersonParents(ctx context.Context, personID int64) ([]domain.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.first_name, p.last_name, p.gender, p.birth_date
		FROM persons p
		JOIN person_parents pp ON p.id = pp.parent_id
		WHERE pp.person_id = $1
		ORDER BY CASE p.gender WHEN 'M' THEN 0 ELSE 1 END, p.id
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to get parents of person %d: %w", personID, err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

func (r *PostgresFamiliesRepository) GetPersonChildren(ctx context.Context, personID int64) ([]domain.Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.first_name, p.last_name, p.gender, p.birth_date
		FROM persons p
		JOIN person_parents pp ON p.id = pp.person_id
		WHERE pp.parent_id = $1
		ORDER BY p.birth_date ASC NULLS LAST, p.id
	`, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to get children of person %d: %w", personID, err)
	}
	defer rows.Close()
	return collectPersons(rows)
}

func (r *PostgresFamiliesRepository) FindChildMembership(ctx context.Context, personID int64) (*int64, error) {
	// Earliest-created membership wins; at most one other family is surfaced.
	var familyID int64
	err := r.db.QueryRowContext(ctx, `
		SELECT family_id FROM family_members
		WHERE person_id = $1 AND role = 'enfant'
		ORDER BY family_id
		LIMIT 1
	`, personID).Scan(&familyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find child membership of person %d: %w", personID, err)
	}
	return &familyID, nil
}

func (r *PostgresFamiliesRepository) FindParentMembership(ctx context.Context, personID, excludeFamilyID int64) (*int64, error) {
	var familyID int64
	err := r.db.QueryRowContext(ctx, `
		SELECT family_id FROM family_members
		WHERE person_id = $1 AND role IN ('pere', 'mere') AND family_id <> $2
		ORDER BY family_id
		LIMIT 1
	`, personID, excludeFamilyID).Scan(&familyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find parent membership of person %d: %w", personID, err)
	}
	return &familyID, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanPerson scans the person columns plus, when roleDest is non-nil, a
// trailing role column. Gender codes and dates are normalized here so the
// rest of the system only sees domain values.
func scanPerson(s scanner, p *domain.Person, roleDest *string) error {
	var firstName, lastName sql.NullString
	var gender string
	var birthDate sql.NullTime

	var err error
	if roleDest != nil {
		err = s.Scan(&p.ID, &firstName, &lastName, &gender, &birthDate, roleDest)
	} else {
		err = s.Scan(&p.ID, &firstName, &lastName, &gender, &birthDate)
	}
	if err != nil {
		return err
	}

	p.FirstName = firstName.String
	p.LastName = lastName.String
	p.Gender = NormalizeGender(gender)
	if birthDate.Valid {
		d := birthDate.Time
		// plain calendar date, no time-of-day, no timezone
		d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		p.BirthDate = &d
	}
	return nil
}

func collectPersons(rows *sql.Rows) ([]domain.Person, error) {
	persons := []domain.Person{}
	for rows.Next() {
		var p domain.Person
		if err := scanPerson(rows, &p, nil); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read persons: %w", err)
	}
	return persons, nil
}

// NormalizeGender maps the store's single-letter code to the wire value.
// Everything that is not 'M' is treated as female, matching the store's
// convention.
func NormalizeGender(code string) domain.Gender {
	if code == "M" {
		return domain.GenderMale
	}
	return domain.GenderFemale
}
