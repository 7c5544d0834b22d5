package repository

import (
	"context"
	"errors"

	"familytree/internal/domain"
)

// ErrFamilyNotFound reports that the requested family id has no matching
// record. The handler maps it to 404; everything else becomes a 500.
var ErrFamilyNotFound = errors.New("family not found")

// FamiliesRepository is the read surface over the person/family store.
// One method per resolution step: the resolver owns the assembly order and
// the all-or-nothing rule, the repository only answers point queries.
type FamiliesRepository interface {
	// GetFamily returns the family node or ErrFamilyNotFound.
	GetFamily(ctx context.Context, familyID int64) (*domain.FamilyRef, error)

	// ListFamilies returns all family nodes ordered by id.
	ListFamilies(ctx context.Context) ([]domain.FamilyRef, error)

	// GetParents returns the family's father/mother members, fathers before
	// mothers, stable by person id within a role.
	GetParents(ctx context.Context, familyID int64) ([]domain.Member, error)

	// GetChildren returns the family's child members ordered by birth date
	// ascending; undated children sort after dated ones, ties break by id.
	GetChildren(ctx context.Context, familyID int64) ([]domain.Person, error)

	// GetPersonParents returns a person's own parents through the parent-of
	// relation (independent of family membership), fathers first.
	GetPersonParents(ctx context.Context, personID int64) ([]domain.Person, error)

	// GetPersonChildren returns a person's own children through the
	// parent-of relation, ordered like GetChildren.
	GetPersonChildren(ctx context.Context, personID int64) ([]domain.Person, error)

	// FindChildMembership returns the first family (lowest id) in which the
	// person holds the child role, or nil when there is none.
	FindChildMembership(ctx context.Context, personID int64) (*int64, error)

	// FindParentMembership returns the first family other than excludeFamilyID
	// in which the person holds a father or mother role, or nil.
	FindParentMembership(ctx context.Context, personID, excludeFamilyID int64) (*int64, error)
}
