package domain

// Answer is the response to a grounded question.
// ConfidenceScore is always present, fixed at 0.0 on the not-found path,
// and SupportingSourceText is empty exactly when no context was used.
type Answer struct {
	Answer               string   `json:"answer"`
	SupportingSourceText []string `json:"supporting_source_text"`
	ConfidenceScore      float64  `json:"confidence_score"`
}

// NotFoundAnswer is the canonical response when retrieval found nothing
// relevant enough to attempt generation.
const NotFoundAnswer = "I'm sorry, I couldn't find any information regarding that in the provided logistics documents."

// NewNotFoundAnswer builds the canonical not-found response.
func NewNotFoundAnswer() Answer {
	return Answer{
		Answer:               NotFoundAnswer,
		SupportingSourceText: []string{},
		ConfidenceScore:      0.0,
	}
}
