// Package client is the consumer side of the family view wire contract,
// used by the TUI and anything else that talks to familytree-server.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"familytree/internal/domain"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrNotFound: the requested family id has no matching record.
	ErrNotFound = errors.New("family not found")
	// ErrTransport: the server could not be reached at all.
	ErrTransport = errors.New("cannot reach family server")
	// ErrServer: the server answered with a failure.
	ErrServer = errors.New("family server error")
)

type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

type errPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type familyRefPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type listPayload struct {
	Success  bool               `json:"success"`
	Count    int                `json:"count"`
	Families []familyRefPayload `json:"families"`
}

type personPayload struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Gender         string  `json:"gender"`
	BirthDate      *string `json:"birthDate"`
	Role           string  `json:"role"`
	FamilyID       int64   `json:"familyId"`
	HasOtherFamily bool    `json:"hasOtherFamily"`
	OtherFamilyID  *int64  `json:"otherFamilyId"`
}

type childPayload struct {
	personPayload
	Grandchildren []personPayload `json:"grandchildren"`
}

type familyPayload struct {
	Success      bool            `json:"success"`
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Grandparents []personPayload `json:"grandparents"`
	Parents      []personPayload `json:"parents"`
	Children     []childPayload  `json:"children"`
}

// Families fetches the family list.
func (c *Client) Families(ctx context.Context) ([]domain.FamilyRef, error) {
	var ok listPayload
	var fail errPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&ok).
		SetError(&fail).
		Get("/api/families")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, serverError(resp, &fail)
	}
	refs := make([]domain.FamilyRef, 0, len(ok.Families))
	for _, f := range ok.Families {
		refs = append(refs, domain.FamilyRef{ID: f.ID, Name: f.Name})
	}
	return refs, nil
}

// Family fetches one family view.
func (c *Client) Family(ctx context.Context, familyID int64) (*domain.FamilyView, error) {
	var ok familyPayload
	var fail errPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&ok).
		SetError(&fail).
		Get(fmt.Sprintf("/api/families/%d", familyID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return ok.toDomain(), nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, serverError(resp, &fail)
	}
}

func serverError(resp *resty.Response, fail *errPayload) error {
	msg := fail.Error
	if msg == "" {
		msg = resp.Status()
	}
	return fmt.Errorf("%w: %s", ErrServer, msg)
}

func (p familyPayload) toDomain() *domain.FamilyView {
	view := &domain.FamilyView{
		ID:           p.ID,
		Name:         p.Name,
		Grandparents: make([]domain.ViewPerson, 0, len(p.Grandparents)),
		Parents:      make([]domain.ViewPerson, 0, len(p.Parents)),
		Children:     make([]domain.Child, 0, len(p.Children)),
	}
	for _, gp := range p.Grandparents {
		view.Grandparents = append(view.Grandparents, gp.toDomain())
	}
	for _, parent := range p.Parents {
		view.Parents = append(view.Parents, parent.toDomain())
	}
	for _, c := range p.Children {
		child := domain.Child{
			ViewPerson:    c.personPayload.toDomain(),
			Grandchildren: make([]domain.Person, 0, len(c.Grandchildren)),
		}
		for _, gc := range c.Grandchildren {
			child.Grandchildren = append(child.Grandchildren, gc.toDomain().Person)
		}
		view.Children = append(view.Children, child)
	}
	return view
}

func (p personPayload) toDomain() domain.ViewPerson {
	vp := domain.ViewPerson{
		Person: domain.Person{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Gender:    domain.Gender(p.Gender),
		},
		Role:           domain.Role(p.Role),
		FamilyID:       p.FamilyID,
		HasOtherFamily: p.HasOtherFamily,
		OtherFamilyID:  p.OtherFamilyID,
	}
	if p.BirthDate != nil {
		if t, err := time.Parse("2006-01-02", *p.BirthDate); err == nil {
			vp.BirthDate = &t
		}
	}
	return vp
}
