package restclient

import "fmt"

// UnexpectedStatusError is returned when a response carries a status code the
// caller did not accept.
type UnexpectedStatusError struct {
	Code int
	Body []byte
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// MalformedResponseError is returned when a response body is not valid JSON.
type MalformedResponseError struct {
	Body []byte
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed JSON response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
