package chessdto

// Wire error codes.
const (
	CodeBadRequest         = "bad_request"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeRejected           = "rejected"
	CodeAdvisorUnavailable = "advisor_unavailable"
	CodeInternal           = "internal"
)

// DomainError is the error body every API endpoint returns. Code is either
// one of the generic codes above or a rules rejection such as
// "not_your_turn"; Message is ready for display.
type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}
