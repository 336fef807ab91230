package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/hunt/internal/errors"
	"github.com/stwalsh4118/hunt/internal/middleware"
	"github.com/stwalsh4118/hunt/internal/models"
	"github.com/stwalsh4118/hunt/internal/services"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// IndexTemplate is the name of the accident listing page template.
const IndexTemplate = "index.tmpl"

// Templates parses the embedded HTML templates for gin's SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

// AccidentHandler handles accident-related HTTP requests.
type AccidentHandler struct {
	service services.AccidentService
}

// NewAccidentHandler creates a new AccidentHandler instance.
func NewAccidentHandler(service services.AccidentService) *AccidentHandler {
	return &AccidentHandler{
		service: service,
	}
}

// ListRequest represents the query parameters for the list endpoint.
type ListRequest struct {
	Relation string `form:"relation" binding:"omitempty,oneof=SI SP"`
	Order    string `form:"order" binding:"omitempty,oneof=asc desc"`
	Fatal    bool   `form:"fatal"`
}

// Scopes maps the query onto accident scopes.
func (r ListRequest) Scopes() []models.Scope {
	var scopes []models.Scope
	if r.Fatal {
		scopes = append(scopes, models.Fatal())
	}
	switch r.Relation {
	case models.PartyRelationSelfInflicted:
		scopes = append(scopes, models.SelfInflicted())
	case models.PartyRelationSameParty:
		scopes = append(scopes, models.SameParty())
	}
	switch r.Order {
	case "asc":
		scopes = append(scopes, models.Chronological())
	case "desc":
		scopes = append(scopes, models.ReverseChronological())
	}
	return scopes
}

// AccidentURI holds the path parameter of the single-accident endpoint.
type AccidentURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// AccidentData is the API and template view of one accident. Empty source
// cells are left out of the JSON.
type AccidentData struct {
	Date          string `json:"date"`
	Injury        string `json:"injury,omitempty"`
	County        string `json:"county,omitempty"`
	PartyRelation string `json:"party_relation,omitempty"`
	Circumstances string `json:"circumstances,omitempty"`
	ShooterAge    string `json:"shooter_age,omitempty"`
	ShooterGender string `json:"shooter_gender,omitempty"`
	VictimAge     string `json:"victim_age,omitempty"`
	VictimGender  string `json:"victim_gender,omitempty"`
	Weapon        string `json:"weapon,omitempty"`
	ID            int64  `json:"id"`
	Year          int    `json:"year"`
	FinalReport   bool   `json:"final_report"`
	Fatal         bool   `json:"fatal"`
	SelfInflicted bool   `json:"self_inflicted"`
	SameParty     bool   `json:"same_party"`
}

// AccidentResponse represents the response for the single-accident endpoint.
type AccidentResponse struct {
	Accident AccidentData `json:"accident"`
}

// ListResponse represents the response for the list endpoint.
type ListResponse struct {
	Accidents []AccidentData `json:"accidents"`
	Count     int            `json:"count"`
}

// Index handles GET / and renders every accident, oldest first.
func (h *AccidentHandler) Index(c *gin.Context) {
	accidents, err := h.service.ListAccidents(c.Request.Context(), models.Chronological())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load accidents", err)
		return
	}

	c.HTML(http.StatusOK, IndexTemplate, gin.H{
		"Title":     "Hunting accidents",
		"Accidents": mapAccidentsToDTO(accidents),
	})
}

// List handles GET /api/v1/accidents.
func (h *AccidentHandler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BindError(c, err)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing accident list request", map[string]interface{}{
			"fatal":    req.Fatal,
			"relation": req.Relation,
			"order":    req.Order,
		})
	}

	accidents, err := h.service.ListAccidents(c.Request.Context(), req.Scopes()...)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list accidents", err)
		return
	}

	data := mapAccidentsToDTO(accidents)
	c.JSON(http.StatusOK, ListResponse{
		Accidents: data,
		Count:     len(data),
	})
}

// Get handles GET /api/v1/accidents/:id.
func (h *AccidentHandler) Get(c *gin.Context) {
	var uri AccidentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		apierrors.BindError(c, err)
		return
	}

	accident, err := h.service.GetAccident(c.Request.Context(), uri.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAccidentID):
			apierrors.BadRequest(c, err.Error(), nil)
		case errors.Is(err, services.ErrAccidentNotFound):
			apierrors.NotFound(c, "Accident not found")
		default:
			apierrors.InternalServerError(c, "Failed to query accident", err)
		}
		return
	}

	c.JSON(http.StatusOK, AccidentResponse{
		Accident: mapAccidentToDTO(accident),
	})
}

func mapAccidentsToDTO(accidents []models.Accident) []AccidentData {
	out := make([]AccidentData, 0, len(accidents))
	for i := range accidents {
		out = append(out, mapAccidentToDTO(&accidents[i]))
	}
	return out
}

// mapAccidentToDTO converts an Accident model to an AccidentData DTO.
func mapAccidentToDTO(a *models.Accident) AccidentData {
	return AccidentData{
		ID:            a.ID,
		Date:          a.DateString(),
		Year:          a.Year(),
		FinalReport:   a.FinalReport,
		Fatal:         a.Fatal,
		SelfInflicted: a.IsSelfInflicted(),
		SameParty:     a.IsSameParty(),
		PartyRelation: a.PartyRelationCode(),
		Injury:        deref(a.Injury),
		County:        deref(a.County),
		Circumstances: deref(a.Circumstances),
		ShooterAge:    deref(a.ShooterAge),
		ShooterGender: deref(a.ShooterGender),
		VictimAge:     deref(a.VictimAge),
		VictimGender:  deref(a.VictimGender),
		Weapon:        deref(a.Weapon),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
