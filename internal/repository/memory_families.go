package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"familytree/internal/domain"
)

// MemoryFamiliesRepository is an in-memory FamiliesRepository used for unit
// tests and for running the server without Postgres (DB_ENABLED=false).
// Ordering rules match the Postgres implementation exactly.
type MemoryFamiliesRepository struct {
	mu       sync.RWMutex
	families map[int64]domain.FamilyRef
	persons  map[int64]domain.Person
	members  []membership
	parentOf []parentLink
}

type membership struct {
	PersonID int64
	FamilyID int64
	Role     domain.Role
}

type parentLink struct {
	PersonID int64
	ParentID int64
}

func NewMemoryFamiliesRepository() *MemoryFamiliesRepository {
	return &MemoryFamiliesRepository{
		families: map[int64]domain.FamilyRef{},
		persons:  map[int64]domain.Person{},
	}
}

var _ FamiliesRepository = (*MemoryFamiliesRepository)(nil)

func (r *MemoryFamiliesRepository) AddFamily(id int64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[id] = domain.FamilyRef{ID: id, Name: name}
}

func (r *MemoryFamiliesRepository) AddPerson(p domain.Person) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persons[p.ID] = p
}

func (r *MemoryFamiliesRepository) AddMember(personID, familyID int64, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, membership{PersonID: personID, FamilyID: familyID, Role: role})
}

func (r *MemoryFamiliesRepository) AddParentOf(personID, parentID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parentOf = append(r.parentOf, parentLink{PersonID: personID, ParentID: parentID})
}

func (r *MemoryFamiliesRepository) GetFamily(_ context.Context, familyID int64) (*domain.FamilyRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.families[familyID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	return &ref, nil
}

func (r *MemoryFamiliesRepository) ListFamilies(_ context.Context) ([]domain.FamilyRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	refs := make([]domain.FamilyRef, 0, len(r.families))
	for _, ref := range r.families {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (r *MemoryFamiliesRepository) GetParents(_ context.Context, familyID int64) ([]domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := []domain.Member{}
	for _, m := range r.members {
		if m.FamilyID != familyID || m.Role == domain.RoleChild {
			continue
		}
		p, ok := r.persons[m.PersonID]
		if !ok {
			continue
		}
		members = append(members, domain.Member{Person: p, Role: m.Role})
	}
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Role != members[j].Role {
			return members[i].Role == domain.RoleFather
		}
		return members[i].ID < members[j].ID
	})
	return members, nil
}

func (r *MemoryFamiliesRepository) GetChildren(_ context.Context, familyID int64) ([]domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	persons := []domain.Person{}
	for _, m := range r.members {
		if m.FamilyID != familyID || m.Role != domain.RoleChild {
			continue
		}
		if p, ok := r.persons[m.PersonID]; ok {
			persons = append(persons, p)
		}
	}
	sortByBirthDate(persons)
	return persons, nil
}

func (r *MemoryFamiliesRepository) GetPersonParents(_ context.Context, personID int64) ([]domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	persons := []domain.Person{}
	for _, link := range r.parentOf {
		if link.PersonID != personID {
			continue
		}
		if p, ok := r.persons[link.ParentID]; ok {
			persons = append(persons, p)
		}
	}
	sort.SliceStable(persons, func(i, j int) bool {
		if persons[i].Gender != persons[j].Gender {
			return persons[i].Gender == domain.GenderMale
		}
		return persons[i].ID < persons[j].ID
	})
	return persons, nil
}

func (r *MemoryFamiliesRepository) GetPersonChildren(_ context.Context, personID int64) ([]domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	persons := []domain.Person{}
	for _, link := range r.parentOf {
		if link.ParentID != personID {
			continue
		}
		if p, ok := r.persons[link.PersonID]; ok {
			persons = append(persons, p)
		}
	}
	sortByBirthDate(persons)
	return persons, nil
}

func (r *MemoryFamiliesRepository) FindChildMembership(_ context.Context, personID int64) (*int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findMembership(personID, 0, true), nil
}

func (r *MemoryFamiliesRepository) FindParentMembership(_ context.Context, personID, excludeFamilyID int64) (*int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findMembership(personID, excludeFamilyID, false), nil
}

// findMembership returns the lowest matching family id, mirroring the SQL
// ORDER BY family_id LIMIT 1.
func (r *MemoryFamiliesRepository) findMembership(personID, excludeFamilyID int64, child bool) *int64 {
	var best *int64
	for _, m := range r.members {
		if m.PersonID != personID {
			continue
		}
		if child != (m.Role == domain.RoleChild) {
			continue
		}
		if excludeFamilyID != 0 && m.FamilyID == excludeFamilyID {
			continue
		}
		if best == nil || m.FamilyID < *best {
			id := m.FamilyID
			best = &id
		}
	}
	return best
}

func sortByBirthDate(persons []domain.Person) {
	sort.SliceStable(persons, func(i, j int) bool {
		a, b := persons[i].BirthDate, persons[j].BirthDate
		switch {
		case a == nil && b == nil:
			return persons[i].ID < persons[j].ID
		case a == nil:
			return false // undated sort after dated
		case b == nil:
			return true
		case a.Equal(*b):
			return persons[i].ID < persons[j].ID
		default:
			return a.Before(*b)
		}
	})
}

// SeedDemo loads a small dataset so the server and TUI can run without a
// database: family 1 (two parents, three children), child 7 heads family 4,
// the father of family 1 grew up in family 2, plus paternal grandparents
// and one grandchild.
func (r *MemoryFamiliesRepository) SeedDemo() {
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	r.AddFamily(1, "Dupont")
	r.AddFamily(2, "Dupont (aînés)")
	r.AddFamily(4, "Dupont-Martin")

	r.AddPerson(domain.Person{ID: 1, FirstName: "Jean", LastName: "Dupont", Gender: domain.GenderMale, BirthDate: date(1958, 3, 12)})
	r.AddPerson(domain.Person{ID: 2, FirstName: "Marie", LastName: "Dupont", Gender: domain.GenderFemale, BirthDate: date(1961, 7, 2)})
	r.AddPerson(domain.Person{ID: 5, FirstName: "Luc", LastName: "Dupont", Gender: domain.GenderMale, BirthDate: date(1984, 1, 20)})
	r.AddPerson(domain.Person{ID: 6, FirstName: "Claire", LastName: "Dupont", Gender: domain.GenderFemale, BirthDate: date(1986, 9, 5)})
	r.AddPerson(domain.Person{ID: 7, FirstName: "Paul", LastName: "Dupont", Gender: domain.GenderMale, BirthDate: date(1989, 4, 30)})
	r.AddPerson(domain.Person{ID: 10, FirstName: "Henri", LastName: "Dupont", Gender: domain.GenderMale, BirthDate: date(1930, 11, 1)})
	r.AddPerson(domain.Person{ID: 11, FirstName: "Jeanne", LastName: "Dupont", Gender: domain.GenderFemale, BirthDate: date(1934, 5, 17)})
	r.AddPerson(domain.Person{ID: 12, FirstName: "Sophie", LastName: "Martin", Gender: domain.GenderFemale, BirthDate: date(1990, 12, 8)})
	r.AddPerson(domain.Person{ID: 13, FirstName: "Emma", LastName: "Dupont", Gender: domain.GenderFemale, BirthDate: date(2015, 6, 21)})

	r.AddMember(1, 1, domain.RoleFather)
	r.AddMember(2, 1, domain.RoleMother)
	r.AddMember(5, 1, domain.RoleChild)
	r.AddMember(6, 1, domain.RoleChild)
	r.AddMember(7, 1, domain.RoleChild)

	r.AddMember(10, 2, domain.RoleFather)
	r.AddMember(11, 2, domain.RoleMother)
	r.AddMember(1, 2, domain.RoleChild)

	r.AddMember(7, 4, domain.RoleFather)
	r.AddMember(12, 4, domain.RoleMother)
	r.AddMember(13, 4, domain.RoleChild)

	r.AddParentOf(1, 10)
	r.AddParentOf(1, 11)
	r.AddParentOf(13, 7)
	r.AddParentOf(13, 12)
}
