package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RequestStatus is the three-valued state of a maintenance request
type RequestStatus string

const (
	StatusInReview  RequestStatus = "En revisión"
	StatusApproved  RequestStatus = "Aprobado"
	StatusDelivered RequestStatus = "Entregado"
)

// Next returns the only status a request may advance to.
// Entregado is terminal.
func (s RequestStatus) Next() (RequestStatus, bool) {
	switch s {
	case StatusInReview:
		return StatusApproved, true
	case StatusApproved:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// ActionLabel is the button text that advances a request out of s
func (s RequestStatus) ActionLabel() string {
	switch s {
	case StatusInReview:
		return "Aprobar"
	case StatusApproved:
		return "Marcar entregado"
	default:
		return ""
	}
}

// Editable reports whether material lines may still be changed
func (s RequestStatus) Editable() bool {
	return s == StatusInReview
}

// ServiceCatalogue is the fixed set of service types a request may select
var ServiceCatalogue = []string{
	"Mantenimiento",
	"Reparación",
	"Adecuación",
	"Electrico",
	"Plomeria",
	"Albanil",
	"Pintura",
	"Cerrajeria",
	"Carpinteria",
	"Aire acondicionado",
	ServiceOther,
}

// ServiceOther is the catalogue entry that enables the free-text "cual" field
const ServiceOther = "otroSolicitado"

// ArticleRef is a material line's article reference. The backend sends either the
// bare article id or the populated article document.
type ArticleRef struct {
	ID      string
	Article *Article
}

// Key returns the id the reference points to
func (r ArticleRef) Key() string {
	if r.Article != nil && r.Article.ID != "" {
		return r.Article.ID
	}
	return r.ID
}

// Code returns the article code when populated, the raw reference otherwise
func (r ArticleRef) Code() string {
	if r.Article != nil {
		return r.Article.Code
	}
	return r.ID
}

// Name returns the populated article name, empty when only an id is known
func (r ArticleRef) Name() string {
	if r.Article != nil {
		return r.Article.Name
	}
	return ""
}

// Description returns the populated article description
func (r ArticleRef) Description() string {
	if r.Article != nil {
		return r.Article.Description
	}
	return ""
}

// Label is what tables show for the line's article
func (r ArticleRef) Label() string {
	if r.Article != nil && r.Article.Name != "" {
		return r.Article.Name
	}
	if r.ID != "" {
		return r.ID
	}
	return "—"
}

func (r ArticleRef) MarshalJSON() ([]byte, error) {
	if r.Article != nil {
		return json.Marshal(r.Article)
	}
	return json.Marshal(r.ID)
}

func (r *ArticleRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = ArticleRef{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = ArticleRef{ID: id}
		return nil
	case len(data) > 0 && data[0] == '{':
		var a Article
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		*r = ArticleRef{ID: a.ID, Article: &a}
		return nil
	default:
		return fmt.Errorf("article reference: unexpected JSON %s", data)
	}
}

// MaterialLine is one (article, quantity) entry of a request
type MaterialLine struct {
	Article     ArticleRef `json:"codigoArticulo"`
	Quantity    int        `json:"cantidad"`
	HayMaterial *bool      `json:"hayMaterial,omitempty"`
}

// Request (Solicitud) is a maintenance-service request
type Request struct {
	ID                 string         `json:"_id,omitempty"`
	RequesterName      string         `json:"nombreSolicitante"`
	RequesterArea      string         `json:"areaSolicitante"`
	RequestDate        string         `json:"fechaSolicitud"`
	Tower              string         `json:"torre"`
	Floor              string         `json:"piso"`
	Space              string         `json:"espacio"`
	AlternateSite      string         `json:"sedeAlterna"`
	OtherService       string         `json:"otroServicio"`
	WhichService       string         `json:"cualServicio"`
	Services           []string       `json:"servicios"`
	OtherServiceText   string         `json:"cual"`
	ProblemDescription string         `json:"descripcionProblema"`
	Materials          []MaterialLine `json:"materiales"`
	Status             RequestStatus  `json:"estado"`
}

// NewMaterial is a material line as submitted on request creation
type NewMaterial struct {
	ArticleID string `json:"codigoArticulo"`
	Quantity  int    `json:"cantidad"`
}

// NewRequest is the creation payload for POST /api/solicitudes
type NewRequest struct {
	RequesterName      string        `json:"nombreSolicitante"`
	RequesterArea      string        `json:"areaSolicitante"`
	RequestDate        string        `json:"fechaSolicitud"`
	Tower              string        `json:"torre"`
	Floor              string        `json:"piso"`
	Space              string        `json:"espacio"`
	AlternateSite      string        `json:"sedeAlterna"`
	OtherService       string        `json:"otroServicio"`
	WhichService       string        `json:"cualServicio"`
	Services           []string      `json:"servicios"`
	OtherServiceText   string        `json:"cual"`
	ProblemDescription string        `json:"descripcionProblema"`
	Materials          []NewMaterial `json:"materiales"`
	Status             RequestStatus `json:"estado"`
}

// PendingMaterial is a material line staged on the new-request screen before submission
type PendingMaterial struct {
	ArticleID string `json:"articleId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}
