package client

import "errors"

// ErrStreamTruncated is raised when the event stream ends without a terminal
// complete or error event. It is synthesized on the client and is distinct
// from any error the server reports in an error-stage event.
var ErrStreamTruncated = errors.New("stream ended unexpectedly without a terminal event")

// ServerError carries the message from a server-emitted error-stage event.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "extraction failed: " + e.Message
}
