package submissions

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func errUnauthorized() *Error {
	return &Error{Status: 401, Code: "UNAUTHORIZED", Message: "sign in to rsvp"}
}

func errSubmissionNotFound(id int) *Error {
	return &Error{Status: 404, Code: "SUBMISSION_NOT_FOUND", Message: "submission not found", Details: map[string]any{"submissionId": id}}
}
