package report

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers report session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/report-session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/answer", h.SubmitTextAnswer)
		r.Post("/{id}/answer/audio", h.SubmitAudioAnswer)
		r.Post("/{id}/review", h.ReviewReport)
		r.Post("/{id}/submit", h.SubmitReport)
		r.Get("/{id}/report", h.GetSubmittedReport)
		r.Get("/{id}/export", h.ExportReport)
		r.Post("/{id}/cancel", h.CancelSession)
	})

	r.Get("/questionnaire", h.GetQuestionnaire)
	r.Get("/products", h.SearchProducts)
}
