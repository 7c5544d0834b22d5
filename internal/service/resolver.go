package service

import (
	"context"
	"fmt"

	"familytree/internal/domain"
	"familytree/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolver assembles denormalized family views out of the normalized
// person/family store. Each Resolve is all-or-nothing: any sub-query
// failure aborts the whole request and no partial view escapes.
type Resolver struct {
	repo   repository.FamiliesRepository
	logger *zap.Logger
}

func NewResolver(repo repository.FamiliesRepository, logger *zap.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// List returns all known families for the family list endpoint.
func (r *Resolver) List(ctx context.Context) ([]domain.FamilyRef, error) {
	return r.repo.ListFamilies(ctx)
}

// Resolve builds the FamilyView for one family id. Returns
// repository.ErrFamilyNotFound when the id has no matching record.
//
// Grandparents are expanded through the first parent holding the father
// role only; a parent set without a father yields an empty grandparents
// list. This asymmetry comes from the source data model (the parent-of
// relation was only recorded patrilineally) and is preserved on purpose.
func (r *Resolver) Resolve(ctx context.Context, familyID int64) (*domain.FamilyView, error) {
	family, err := r.repo.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}

	parents, err := r.repo.GetParents(ctx, familyID)
	if err != nil {
		return nil, err
	}
	children, err := r.repo.GetChildren(ctx, familyID)
	if err != nil {
		return nil, err
	}

	grandparents, err := r.resolveGrandparents(ctx, familyID, parents)
	if err != nil {
		return nil, err
	}

	// Per-person annotation lookups are independent of each other; run them
	// as a scatter/gather and wait for all before assembling.
	viewParents := make([]domain.ViewPerson, len(parents))
	viewChildren := make([]domain.Child, len(children))

	g, gctx := errgroup.WithContext(ctx)
	for i, parent := range parents {
		g.Go(func() error {
			otherID, err := r.repo.FindChildMembership(gctx, parent.ID)
			if err != nil {
				return err
			}
			viewParents[i] = domain.ViewPerson{
				Person:         parent.Person,
				Role:           parent.Role,
				FamilyID:       familyID,
				HasOtherFamily: otherID != nil,
				OtherFamilyID:  otherID,
			}
			return nil
		})
	}
	for i, child := range children {
		g.Go(func() error {
			// A child who is a parent only in the current family must not
			// self-reference; the repository excludes familyID.
			otherID, err := r.repo.FindParentMembership(gctx, child.ID, familyID)
			if err != nil {
				return err
			}
			grandchildren, err := r.repo.GetPersonChildren(gctx, child.ID)
			if err != nil {
				return err
			}
			viewChildren[i] = domain.Child{
				ViewPerson: domain.ViewPerson{
					Person:         child,
					Role:           domain.RoleChild,
					FamilyID:       familyID,
					HasOtherFamily: otherID != nil,
					OtherFamilyID:  otherID,
				},
				Grandchildren: grandchildren,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to resolve family %d: %w", familyID, err)
	}

	r.logger.Debug("Family resolved",
		zap.Int64("family_id", familyID),
		zap.Int("parents", len(viewParents)),
		zap.Int("children", len(viewChildren)),
		zap.Int("grandparents", len(grandparents)),
	)

	return &domain.FamilyView{
		ID:           family.ID,
		Name:         family.Name,
		Grandparents: grandparents,
		Parents:      viewParents,
		Children:     viewChildren,
	}, nil
}

func (r *Resolver) resolveGrandparents(ctx context.Context, familyID int64, parents []domain.Member) ([]domain.ViewPerson, error) {
	var father *domain.Member
	for i := range parents {
		if parents[i].Role == domain.RoleFather {
			father = &parents[i]
			break
		}
	}
	if father == nil {
		return []domain.ViewPerson{}, nil
	}

	persons, err := r.repo.GetPersonParents(ctx, father.ID)
	if err != nil {
		return nil, err
	}

	grandparents := make([]domain.ViewPerson, 0, len(persons))
	for _, p := range persons {
		role := domain.RoleMother
		if p.Gender == domain.GenderMale {
			role = domain.RoleFather
		}
		// grandparent cards are never clickable, so no cross-link lookup
		grandparents = append(grandparents, domain.ViewPerson{
			Person:   p,
			Role:     role,
			FamilyID: familyID,
		})
	}
	return grandparents, nil
}
