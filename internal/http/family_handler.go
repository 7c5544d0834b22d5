package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"familytree/internal/domain"
	"familytree/internal/repository"
	"familytree/internal/service"

	"go.uber.org/zap"
)

// FamilyHandler serves the family view API. The wire shapes below are the
// contract the clients (TUI and the static web page) consume.
type FamilyHandler struct {
	resolver *service.Resolver
	logger   *zap.Logger
}

func NewFamilyHandler(resolver *service.Resolver, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{resolver: resolver, logger: logger}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type familyRefJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type listResponse struct {
	Success  bool            `json:"success"`
	Count    int             `json:"count"`
	Families []familyRefJSON `json:"families"`
}

type personJSON struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Gender         string  `json:"gender"`
	BirthDate      *string `json:"birthDate"`
	Role           string  `json:"role,omitempty"`
	FamilyID       int64   `json:"familyId,omitempty"`
	HasOtherFamily bool    `json:"hasOtherFamily"`
	OtherFamilyID  *int64  `json:"otherFamilyId"`
}

type simplePersonJSON struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Gender    string  `json:"gender"`
	BirthDate *string `json:"birthDate"`
}

type childJSON struct {
	personJSON
	Grandchildren []simplePersonJSON `json:"grandchildren"`
}

type familyResponse struct {
	Success      bool         `json:"success"`
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Grandparents []personJSON `json:"grandparents"`
	Parents      []personJSON `json:"parents"`
	Children     []childJSON  `json:"children"`
}

// ListFamilies handles GET /api/families.
func (h *FamilyHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	refs, err := h.resolver.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list families", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: err.Error()})
		return
	}
	families := make([]familyRefJSON, 0, len(refs))
	for _, ref := range refs {
		families = append(families, familyRefJSON{ID: ref.ID, Name: ref.Name})
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Count: len(families), Families: families})
}

// GetFamily handles GET /api/families/{id}. A malformed id is reported the
// same way as an absent one: 404, no partial data.
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request, idStr string) {
	familyID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Success: false, Error: "family not found"})
		return
	}

	view, err := h.resolver.Resolve(r.Context(), familyID)
	if err != nil {
		if errors.Is(err, repository.ErrFamilyNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Success: false, Error: "family not found"})
			return
		}
		h.logger.Error("Failed to resolve family",
			zap.Int64("family_id", familyID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Error: err.Error()})
		return
	}

	h.logger.Info("Family resolved",
		zap.Int64("family_id", familyID),
		zap.Int("parents", len(view.Parents)),
		zap.Int("children", len(view.Children)),
	)
	writeJSON(w, http.StatusOK, toFamilyResponse(view))
}

func toFamilyResponse(view *domain.FamilyView) familyResponse {
	resp := familyResponse{
		Success:      true,
		ID:           view.ID,
		Name:         view.Name,
		Grandparents: make([]personJSON, 0, len(view.Grandparents)),
		Parents:      make([]personJSON, 0, len(view.Parents)),
		Children:     make([]childJSON, 0, len(view.Children)),
	}
	for _, gp := range view.Grandparents {
		resp.Grandparents = append(resp.Grandparents, toPersonJSON(gp))
	}
	for _, p := range view.Parents {
		resp.Parents = append(resp.Parents, toPersonJSON(p))
	}
	for _, c := range view.Children {
		child := childJSON{
			personJSON:    toPersonJSON(c.ViewPerson),
			Grandchildren: make([]simplePersonJSON, 0, len(c.Grandchildren)),
		}
		for _, gc := range c.Grandchildren {
			child.Grandchildren = append(child.Grandchildren, simplePersonJSON{
				ID:        gc.ID,
				FirstName: gc.FirstName,
				LastName:  gc.LastName,
				Gender:    string(gc.Gender),
				BirthDate: formatDate(gc.BirthDate),
			})
		}
		resp.Children = append(resp.Children, child)
	}
	return resp
}

func toPersonJSON(p domain.ViewPerson) personJSON {
	return personJSON{
		ID:             p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Gender:         string(p.Gender),
		BirthDate:      formatDate(p.BirthDate),
		Role:           string(p.Role),
		FamilyID:       p.FamilyID,
		HasOtherFamily: p.HasOtherFamily,
		OtherFamilyID:  p.OtherFamilyID,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
