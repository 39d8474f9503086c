package formatter

import (
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/questionnaire"
)

// Document is the export-ready view of a report session
type Document struct {
	Title       string               `json:"title"`
	SessionID   string               `json:"session_id"`
	Status      entity.SessionStatus `json:"session_status"`
	GeneratedAt time.Time            `json:"generated_at"`
	Sections    []DocumentSection    `json:"sections"`
	Review      *entity.ReportReview `json:"review,omitempty"`
}

type DocumentSection struct {
	ID      entity.Section `json:"id"`
	Title   string         `json:"title"`
	Answers []DocumentItem `json:"answers"`
}

type DocumentItem struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BuildDocument lays out the answered questions of a session by section.
// Sections without answers, such as a skipped branch, are left out.
func BuildDocument(q *questionnaire.Questionnaire, session *entity.Session, generatedAt time.Time) *Document {
	doc := &Document{
		Title:       baseTitle,
		SessionID:   session.ID,
		Status:      session.Status,
		GeneratedAt: generatedAt,
		Review:      session.Review,
	}

	var current *DocumentSection
	for _, question := range q.Questions() {
		answer, ok := session.Answers[entity.AnswerKey(question.Index)]
		if !ok {
			continue
		}

		if current == nil || current.ID != question.Section {
			doc.Sections = append(doc.Sections, DocumentSection{
				ID:    question.Section,
				Title: q.SectionTitle(question.Section),
			})
			current = &doc.Sections[len(doc.Sections)-1]
		}

		current.Answers = append(current.Answers, DocumentItem{
			Index:    question.Index,
			Question: question.Text,
			Answer:   answer,
		})
	}

	return doc
}

// reviewLines returns the review as labelled lines in a fixed order
func reviewLines(review *entity.ReportReview) [][2]string {
	if review == nil {
		return nil
	}
	return [][2]string{
		{"Consistency", review.ConsistencyCheck},
		{"Completeness", review.CompletenessScore},
		{"Anonymization", review.AnonymizationCheck},
		{"Clarity", review.ClarityAssessment},
	}
}
