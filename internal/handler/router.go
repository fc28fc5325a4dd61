package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterOptions configures the pieces of the router that live outside the
// resource handlers.
type RouterOptions struct {
	// Auth guards every resource route. Nil leaves them open.
	Auth func(http.Handler) http.Handler

	// Metrics is served at GET /metrics when set.
	Metrics http.Handler

	// OpenAPI is served at GET /openapi.yaml when set.
	OpenAPI []byte
}

// NewRouter registers every route of the API on a new chi router.
// /healthz, /metrics and /openapi.yaml are never behind Auth.
func NewRouter(s *Server, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.OpenAPI != nil {
		r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(opts.OpenAPI)
		})
	}

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}

		r.Get("/institutions", s.ListInstitutions)
		r.Get("/dashboard", s.GetDashboard)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", s.ListClients)
			r.Post("/", s.CreateClient)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetClient)
				r.Put("/", s.UpdateClient)
				r.Delete("/", s.DeleteClient)
				r.Get("/properties", s.ListClientProperties)
				r.Get("/projects/board", s.GetProjectBoard)
				r.Get("/documents", s.ListClientDocuments)
				r.Post("/documents", s.UploadClientDocument)
			})
		})

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", s.ListProperties)
			r.Post("/", s.CreateProperty)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetProperty)
				r.Put("/", s.UpdateProperty)
				r.Delete("/", s.DeleteProperty)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.ListProjects)
			r.Post("/", s.CreateProject)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetProject)
				r.Put("/", s.UpdateProject)
				r.Delete("/", s.DeleteProject)
				r.Patch("/status", s.UpdateProjectStatus)
				r.Get("/invoices", s.ListInvoices)
				r.Post("/invoices", s.CreateInvoice)
				r.Delete("/invoices/{invoiceID}", s.DeleteInvoice)
				r.Get("/documents", s.ListProjectDocuments)
				r.Post("/documents", s.UploadProjectDocument)
			})
		})

		r.Route("/documents/{id}", func(r chi.Router) {
			r.Get("/", s.DownloadDocument)
			r.Delete("/", s.DeleteDocument)
		})

		r.Route("/expirations", func(r chi.Router) {
			r.Get("/", s.ListExpirations)
			r.Post("/", s.CreateExpiration)
			r.Get("/export", s.ExportExpirations)
			r.Get("/summary", s.GetExpirationSummary)
			r.Get("/document-types", s.ListDocumentTypes)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetExpiration)
				r.Put("/", s.UpdateExpiration)
				r.Delete("/", s.DeleteExpiration)
				r.Post("/notify", s.NotifyExpiration)
				r.Get("/notifications", s.ListExpirationNotifications)
			})
		})

		r.Post("/notifications/process", s.ProcessNotifications)
	})

	return r
}
