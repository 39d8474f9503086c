package entity

type LLMCorrectAnswerRequest struct {
	Text            string `json:"text"`
	CurrentQuestion string `json:"current_question"`
}

type LLMCorrectAnswerResponse struct {
	CorrectedText string `json:"corrected_text"`
	IntentSummary string `json:"intent_summary"`
	ProductType   string `json:"product_type,omitempty"`
}

type LLMReviewReportRequest struct {
	ReportDraft string `json:"report_draft"`
}

type LLMReviewReportResponse struct {
	ConsistencyCheck   string `json:"consistency_check"`
	CompletenessScore  string `json:"completeness_score"`
	AnonymizationCheck string `json:"anonymization_check"`
	ClarityAssessment  string `json:"clarity_assessment"`
}

type ASRTranscribeResponse struct {
	Transcriptions string `json:"transcriptions"`
}

type ProductsSearchResponse struct {
	Products []Product `json:"products"`
}
