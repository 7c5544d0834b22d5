package domain

import "time"

// Gender is the normalized gender of a person. The store keeps the raw
// single-letter codes; everything above the repository layer only sees
// these values.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Role is a person's role within one family node. The codes are the ones
// the store (and the wire contract) use.
type Role string

const (
	RoleFather Role = "pere"
	RoleMother Role = "mere"
	RoleChild  Role = "enfant"
)

// Person is one person record as stored. Immutable once fetched; each
// resolved view carries its own copies.
type Person struct {
	ID        int64
	FirstName string
	LastName  string
	Gender    Gender
	BirthDate *time.Time // calendar date only, nil when unknown
}

// FamilyRef identifies one family node.
type FamilyRef struct {
	ID   int64
	Name string
}

// Member is a person together with the role they hold in the family being
// queried.
type Member struct {
	Person
	Role Role
}

// ViewPerson is a person as it appears inside a FamilyView: role-tagged and
// annotated with the cross-family link, if any. At most one other family is
// surfaced per person even when more exist (earliest-created membership
// wins).
type ViewPerson struct {
	Person
	Role           Role
	FamilyID       int64
	HasOtherFamily bool
	OtherFamilyID  *int64
}

// Child is a child entry of a FamilyView, optionally carrying the child's
// own children one generation down.
type Child struct {
	ViewPerson
	Grandchildren []Person
}

// FamilyView is the denormalized view assembled for one family: the
// family's own parents and children, plus one generation up and one
// generation down. It is built fresh per request and never returned
// partially assembled.
//
// Grandparents are resolved through the first parent holding the father
// role only; a family with no father yields an empty grandparents list.
// This asymmetry comes from the source data model and is deliberate.
type FamilyView struct {
	ID           int64
	Name         string
	Grandparents []ViewPerson
	Parents      []ViewPerson
	Children     []Child
}
