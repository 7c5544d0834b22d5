// Package tree turns a FamilyView into an abstract generational layout:
// rows of typed cards with role labels, badges and navigation targets.
// Building a layout is a pure function of the view; no fetching happens
// here, and no display toolkit leaks in. Presentation adapters (the TUI,
// the web page) bind the layout to their own output.
package tree

import (
	"fmt"
	"time"

	"familytree/internal/domain"
)

// Badge marks the cross-family affordance on a card.
type Badge string

const (
	// BadgeNone: no cross-link, card is not clickable.
	BadgeNone Badge = ""
	// BadgeOriginFamily: a parent who appears as a child elsewhere.
	BadgeOriginFamily Badge = "origin family"
	// BadgeOwnFamily: a child who appears as a parent elsewhere.
	BadgeOwnFamily Badge = "own family"
)

// Card is one person tile in the layout.
type Card struct {
	PersonID       int64
	Name           string
	Gender         domain.Gender
	BirthDate      *time.Time
	RoleLabel      string
	Badge          Badge
	TargetFamilyID int64 // 0 when the card is not a navigation trigger
	Grandchildren  []Grandchild
}

// Clickable reports whether the card is a navigation trigger.
func (c Card) Clickable() bool { return c.TargetFamilyID != 0 }

// Grandchild is the collapsed, non-interactive inline entry under a child
// card: name and gender only.
type Grandchild struct {
	Name   string
	Gender domain.Gender
}

// Layout is the generational diagram: grandparents row above parents row
// above children row. Empty is set when the view carries no people at all,
// so the renderer shows an explicit placeholder instead of an empty
// container.
type Layout struct {
	FamilyID   int64
	FamilyName string
	Empty      bool
	Polygamous bool

	Grandparents []Card
	Parents      []Card
	Children     []Card
}

// BuildLayout classifies the parent set and lays the view out.
//
// With at most one father and one mother the parents keep the fixed
// two-slot couple layout in fetched order. With two or more fathers or
// mothers the layout switches to the polygamous flow: all fathers first,
// then all mothers, numbered per role when a role appears more than once.
func BuildLayout(view *domain.FamilyView) Layout {
	layout := Layout{
		FamilyID:   view.ID,
		FamilyName: view.Name,
	}

	if len(view.Grandparents) == 0 && len(view.Parents) == 0 && len(view.Children) == 0 {
		layout.Empty = true
		return layout
	}

	for _, gp := range view.Grandparents {
		label := "Grandmother"
		if gp.Role == domain.RoleFather {
			label = "Grandfather"
		}
		// grandparent cards never carry a navigation target
		layout.Grandparents = append(layout.Grandparents, Card{
			PersonID:  gp.ID,
			Name:      displayName(gp.Person),
			Gender:    gp.Gender,
			BirthDate: gp.BirthDate,
			RoleLabel: label,
		})
	}

	var fathers, mothers []domain.ViewPerson
	for _, p := range view.Parents {
		if p.Role == domain.RoleFather {
			fathers = append(fathers, p)
		} else {
			mothers = append(mothers, p)
		}
	}
	layout.Polygamous = len(fathers) > 1 || len(mothers) > 1

	if layout.Polygamous {
		// flow layout, no fixed pairing: fathers first, then mothers, both
		// in fetch order
		for i, f := range fathers {
			layout.Parents = append(layout.Parents, parentCard(f, "Father", i, len(fathers)))
		}
		for i, m := range mothers {
			layout.Parents = append(layout.Parents, parentCard(m, "Mother", i, len(mothers)))
		}
	} else {
		for _, p := range view.Parents {
			label := "Mother"
			if p.Role == domain.RoleFather {
				label = "Father"
			}
			layout.Parents = append(layout.Parents, parentCard(p, label, 0, 1))
		}
	}

	for _, c := range view.Children {
		card := Card{
			PersonID:  c.ID,
			Name:      displayName(c.Person),
			Gender:    c.Gender,
			BirthDate: c.BirthDate,
			RoleLabel: "Child",
		}
		if c.HasOtherFamily && c.OtherFamilyID != nil {
			card.Badge = BadgeOwnFamily
			card.TargetFamilyID = *c.OtherFamilyID
		}
		for _, gc := range c.Grandchildren {
			card.Grandchildren = append(card.Grandchildren, Grandchild{
				Name:   displayName(gc),
				Gender: gc.Gender,
			})
		}
		layout.Children = append(layout.Children, card)
	}

	return layout
}

func parentCard(p domain.ViewPerson, baseLabel string, index, total int) Card {
	label := baseLabel
	if total > 1 {
		label = fmt.Sprintf("%s %d", baseLabel, index+1)
	}
	card := Card{
		PersonID:  p.ID,
		Name:      displayName(p.Person),
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
		RoleLabel: label,
	}
	if p.HasOtherFamily && p.OtherFamilyID != nil {
		card.Badge = BadgeOriginFamily
		card.TargetFamilyID = *p.OtherFamilyID
	}
	return card
}

// displayName renders names the way the cards always have: last name
// first.
func displayName(p domain.Person) string {
	switch {
	case p.LastName == "":
		return p.FirstName
	case p.FirstName == "":
		return p.LastName
	default:
		return p.LastName + " " + p.FirstName
	}
}
