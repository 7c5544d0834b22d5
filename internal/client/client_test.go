package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"familytree/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestFamily_DecodesView(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/families/1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true, "id": 1, "name": "Dupont",
			"grandparents": [],
			"parents": [
				{"id": 1, "firstName": "Jean", "lastName": "Dupont", "gender": "male",
				 "birthDate": "1958-03-12", "role": "pere", "familyId": 1,
				 "hasOtherFamily": true, "otherFamilyId": 2}
			],
			"children": [
				{"id": 7, "firstName": "Paul", "lastName": "Dupont", "gender": "male",
				 "birthDate": null, "familyId": 1,
				 "hasOtherFamily": true, "otherFamilyId": 4,
				 "grandchildren": [
					{"id": 13, "firstName": "Emma", "lastName": "Dupont", "gender": "female", "birthDate": "2015-06-21"}
				 ]}
			]
		}`))
	})

	view, err := c.Family(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Dupont", view.Name)

	require.Len(t, view.Parents, 1)
	father := view.Parents[0]
	assert.Equal(t, domain.RoleFather, father.Role)
	require.NotNil(t, father.BirthDate)
	assert.Equal(t, "1958-03-12", father.BirthDate.Format("2006-01-02"))
	require.NotNil(t, father.OtherFamilyID)
	assert.Equal(t, int64(2), *father.OtherFamilyID)

	require.Len(t, view.Children, 1)
	child := view.Children[0]
	assert.Nil(t, child.BirthDate)
	require.Len(t, child.Grandchildren, 1)
	assert.Equal(t, "Emma", child.Grandchildren[0].FirstName)
}

func TestFamily_NotFound(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success": false, "error": "family not found"}`))
	})

	_, err := c.Family(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFamily_ServerFailureCarriesMessage(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success": false, "error": "connection reset"}`))
	})

	_, err := c.Family(context.Background(), 1)
	require.ErrorIs(t, err, ErrServer)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFamily_UnreachableServerIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listens here anymore

	c := New(url)
	_, err := c.Family(context.Background(), 1)
	require.ErrorIs(t, err, ErrTransport)
}

func TestFamilies_DecodesList(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/families" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "count": 2, "families": [
			{"id": 1, "name": "Dupont"}, {"id": 4, "name": "Dupont-Martin"}
		]}`))
	})

	refs, err := c.Families(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, domain.FamilyRef{ID: 4, Name: "Dupont-Martin"}, refs[1])
}
