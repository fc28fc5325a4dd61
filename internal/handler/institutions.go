package handler

import (
	"net/http"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// Institution describes one government body projects are filed with.
// Subtypes is only set for institutions with a fixed procedure list.
type Institution struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Subtypes []string `json:"subtypes,omitempty"`
}

// ListInstitutions handles GET /institutions.
func (s *Server) ListInstitutions(w http.ResponseWriter, _ *http.Request) {
	out := make([]Institution, len(domain.Institutions))
	for i, inst := range domain.Institutions {
		out[i] = Institution{Code: string(inst), Name: inst.FullName()}
		if inst == domain.InstitutionMADES {
			out[i].Subtypes = domain.MADESSubtypes
		}
	}
	writeJSON(w, http.StatusOK, out)
}
