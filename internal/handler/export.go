package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/consultoria-ambiental/registro/internal/domain"
)

// utf8BOM lets spreadsheet software detect the encoding of the accented headers.
const utf8BOM = "\ufeff"

// csvHeaders defines the column names written as the first row of the export.
var csvHeaders = []string{
	"Cliente", "Tipo de Documento", "Fecha Emisión", "Fecha Vencimiento",
	"Días hasta Vencimiento", "Propiedad (Finca)", "Ubicación", "Estado",
}

// ExportExpirations handles GET /expirations/export.
// It accepts the same filters as ListExpirations and returns every matching
// row as a CSV attachment, unpaged.
func (s *Server) ExportExpirations(w http.ResponseWriter, r *http.Request) {
	f, err := expirationFilter(r)
	if err != nil {
		badQuery(w, err)
		return
	}

	rows, err := s.expirations.Export(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err, "expiration")
		return
	}

	filename := "vencimientos_" + s.today().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buildCSV(rows))
}

// buildCSV encodes rows as CSV, prefixed with a UTF-8 byte order mark.
func buildCSV(rows []domain.ExportRow) []byte {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		w.Write([]string{
			r.ClientName,
			r.DocumentType,
			r.IssuedAt,
			r.ExpiresAt,
			strconv.Itoa(r.DaysRemaining),
			r.PropertyName,
			r.Location,
			r.Status,
		})
	}
	w.Flush()
	return buf.Bytes()
}
