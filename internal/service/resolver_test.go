package service

import (
	"context"
	"testing"
	"time"

	"familytree/internal/domain"
	"familytree/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDate(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// demoRepo mirrors the sample dataset: family 1 with two parents and three
// children, child 7 heads family 4, father 1 grew up in family 2.
func demoRepo() *repository.MemoryFamiliesRepository {
	repo := repository.NewMemoryFamiliesRepository()
	repo.SeedDemo()
	return repo
}

func newTestResolver(repo repository.FamiliesRepository) *Resolver {
	return NewResolver(repo, zap.NewNop())
}

func TestResolve_UnknownFamilyIsNotFound(t *testing.T) {
	r := newTestResolver(demoRepo())

	_, err := r.Resolve(context.Background(), 999)
	require.ErrorIs(t, err, repository.ErrFamilyNotFound)
}

func TestResolve_EmptyFamilyYieldsEmptyArrays(t *testing.T) {
	repo := repository.NewMemoryFamiliesRepository()
	repo.AddFamily(3, "Vide")
	r := newTestResolver(repo)

	view, err := r.Resolve(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, view.Grandparents)
	assert.Empty(t, view.Parents)
	assert.Empty(t, view.Children)
}

func TestResolve_ParentsFathersBeforeMothers(t *testing.T) {
	r := newTestResolver(demoRepo())

	view, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, view.Parents, 2)
	assert.Equal(t, domain.RoleFather, view.Parents[0].Role)
	assert.Equal(t, domain.RoleMother, view.Parents[1].Role)
}

func TestResolve_ChildrenOrderedByBirthDateUndatedLast(t *testing.T) {
	repo := repository.NewMemoryFamiliesRepository()
	repo.AddFamily(1, "Test")
	repo.AddPerson(domain.Person{ID: 20, FirstName: "Undated", Gender: domain.GenderMale})
	repo.AddPerson(domain.Person{ID: 21, FirstName: "Young", Gender: domain.GenderFemale, BirthDate: testDate(2001, 1, 1)})
	repo.AddPerson(domain.Person{ID: 22, FirstName: "Old", Gender: domain.GenderMale, BirthDate: testDate(1995, 6, 1)})
	repo.AddMember(20, 1, domain.RoleChild)
	repo.AddMember(21, 1, domain.RoleChild)
	repo.AddMember(22, 1, domain.RoleChild)
	r := newTestResolver(repo)

	view, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, view.Children, 3)
	assert.Equal(t, int64(22), view.Children[0].ID)
	assert.Equal(t, int64(21), view.Children[1].ID)
	assert.Equal(t, int64(20), view.Children[2].ID) // undated sorts last
}

func TestResolve_GrandparentsOnlyThroughFather(t *testing.T) {
	r := newTestResolver(demoRepo())

	view, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, view.Grandparents, 2)
	assert.Equal(t, int64(10), view.Grandparents[0].ID)
	assert.Equal(t, domain.RoleFather, view.Grandparents[0].Role)
	assert.Equal(t, int64(11), view.Grandparents[1].ID)
	assert.Equal(t, domain.RoleMother, view.Grandparents[1].Role)
}

func TestResolve_MotherOnlyFamilyHasNoGrandparents(t *testing.T) {
	// the paternal-only expansion is a documented rule of the data model:
	// a parent set with only mothers yields an empty grandparents list even
	// when the mother's own parents are on record
	repo := repository.NewMemoryFamiliesRepository()
	repo.AddFamily(1, "Test")
	repo.AddPerson(domain.Person{ID: 2, FirstName: "Marie", Gender: domain.GenderFemale})
	repo.AddPerson(domain.Person{ID: 30, FirstName: "Grandpa", Gender: domain.GenderMale})
	repo.AddMember(2, 1, domain.RoleMother)
	repo.AddParentOf(2, 30)
	r := newTestResolver(repo)

	view, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, view.Grandparents)
}

func TestResolve_ChildHeadingOtherFamilyIsCrossLinked(t *testing.T) {
	r := newTestResolver(demoRepo())

	view, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, view.Children, 3)

	linked := 0
	for _, c := range view.Children {
		if c.ID == 7 {
			linked++
			require.True(t, c.HasOtherFamily)
			require.NotNil(t, c.OtherFamilyID)
			assert.Equal(t, int64(4), *c.OtherFamilyID)
		} else {
			assert.False(t, c.HasOtherFamily)
			assert.Nil(t, c.OtherFamilyID)
		}
	}
	assert.Equal(t, 1, linked)
}

func TestResolve_ChildParentOnlyInCurrentFamilyDoesNotSelfReference(t *testing.T) {
	// degenerate record: the same person is both child and parent of the
	// same family; the current family must be excluded from the cross-link
	repo := repository.NewMemoryFamiliesRepository()
	repo.AddFamily(1, "Test")
	repo.AddPerson(domain.Person{ID: 5, FirstName: "Luc", Gender: domain.GenderMale})
	repo.AddMember(5, 1, domain.RoleChild)
	repo.AddMember(5, 1, domain.RoleFather)
	r := newTestResolver(repo)

	view, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, view.Children, 1)
	assert.False(t, view.Children[0].HasOtherFamily)
	assert.Nil(t, view.Children[0].OtherFamilyID)
}

func TestResolve_ParentRaisedElsewhereIsCrossLinked(t *testing.T) {
	r := newTestResolver(demoRepo())

	view, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	father := view.Parents[0]
	require.True(t, father.HasOtherFamily)
	require.NotNil(t, father.OtherFamilyID)
	assert.Equal(t, int64(2), *father.OtherFamilyID)
}

func TestResolve_GrandchildrenEmbeddedUnderChild(t *testing.T) {
	r := newTestResolver(demoRepo())

	view, err := r.Resolve(context.Background(), 1)
	require.NoError(t, err)
	for _, c := range view.Children {
		if c.ID == 7 {
			require.Len(t, c.Grandchildren, 1)
			assert.Equal(t, int64(13), c.Grandchildren[0].ID)
			return
		}
	}
	t.Fatal("child 7 not found")
}

func TestResolve_NavigationRoundTripIsIdempotent(t *testing.T) {
	r := newTestResolver(demoRepo())
	ctx := context.Background()

	first, err := r.Resolve(ctx, 1)
	require.NoError(t, err)

	// follow the cross-link of child 7, then come back
	var target int64
	for _, c := range first.Children {
		if c.HasOtherFamily {
			target = *c.OtherFamilyID
		}
	}
	require.Equal(t, int64(4), target)

	other, err := r.Resolve(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, "Dupont-Martin", other.Name)

	again, err := r.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	otherAgain, err := r.Resolve(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, other, otherAgain)
}

// failingRepo wraps the memory repository and fails one lookup, proving
// the all-or-nothing rule.
type failingRepo struct {
	*repository.MemoryFamiliesRepository
	err error
}

func (f *failingRepo) GetPersonChildren(ctx context.Context, personID int64) ([]domain.Person, error) {
	return nil, f.err
}

func TestResolve_SubQueryFailureAbortsWholeResolution(t *testing.T) {
	repo := &failingRepo{MemoryFamiliesRepository: demoRepo(), err: context.DeadlineExceeded}
	r := newTestResolver(repo)

	view, err := r.Resolve(context.Background(), 1)
	require.Error(t, err)
	assert.Nil(t, view)
}
