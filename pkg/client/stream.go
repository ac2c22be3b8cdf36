package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/coursedeck/syllabus-extractor/internal/models"
)

// ProgressHandler receives each non-terminal event: the pipeline stage, an
// optional human-readable message, and a partial result when one is present.
type ProgressHandler func(stage, message string, partial *models.SyllabusStructure)

var frameSep = []byte("\n\n")

// consumeStream reads the response body as raw chunks, reassembling SSE
// frames across arbitrary chunk boundaries with a carry-over buffer. It
// returns on the first terminal event: the final payload for complete, a
// *ServerError for error. A stream that ends with neither is
// ErrStreamTruncated, never silent success.
func consumeStream(r io.Reader, onProgress ProgressHandler) (*models.SyllabusStructure, error) {
	var buf []byte
	chunk := make([]byte, 4096)

	for {
		n, readErr := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)

			for {
				idx := bytes.Index(buf, frameSep)
				if idx < 0 {
					break
				}
				frame := buf[:idx]
				buf = buf[idx+len(frameSep):]

				result, terminal, err := dispatchFrame(frame, onProgress)
				if terminal || err != nil {
					return result, err
				}
			}
		}

		if readErr == io.EOF {
			// A final frame may be terminated by a bare newline instead of a
			// blank line; give it one last parse before deciding truncation.
			// A tail that does not decode is a connection cut mid-event, which
			// is truncation, not a protocol violation.
			if rest := bytes.TrimSpace(buf); len(rest) > 0 {
				result, terminal, err := dispatchFrame(rest, onProgress)
				if terminal {
					return result, nil
				}
				if err != nil && !errors.Is(err, errMalformedEvent) {
					return nil, err
				}
			}
			return nil, ErrStreamTruncated
		}
		if readErr != nil {
			return nil, fmt.Errorf("stream read failed: %w", readErr)
		}
	}
}

// errMalformedEvent tags frames whose payload does not decode, so the EOF
// path can tell a cut-off fragment from a real protocol violation.
var errMalformedEvent = errors.New("malformed event")

// dispatchFrame decodes one SSE frame and routes the event. terminal is true
// only for a complete event; server-side failures come back as a
// *ServerError.
func dispatchFrame(frame []byte, onProgress ProgressHandler) (*models.SyllabusStructure, bool, error) {
	payload := framePayload(frame)
	if len(payload) == 0 {
		return nil, false, nil
	}

	var event models.ProgressEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, false, fmt.Errorf("%w %q: %v", errMalformedEvent, payload, err)
	}

	switch event.Stage {
	case models.StageError:
		message := event.Error
		if message == "" {
			message = event.Message
		}
		return nil, false, &ServerError{Message: message}
	case models.StageComplete:
		if event.Data == nil {
			return nil, false, fmt.Errorf("terminal complete event carries no result")
		}
		return event.Data, true, nil
	default:
		if onProgress != nil {
			onProgress(event.Stage, event.Message, event.PartialData)
		}
		return nil, false, nil
	}
}

// framePayload extracts the joined data lines of one frame, ignoring
// comments and non-data fields.
func framePayload(frame []byte) []byte {
	var payload [][]byte
	for _, line := range bytes.Split(frame, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		data := bytes.TrimPrefix(line, []byte("data:"))
		data = bytes.TrimPrefix(data, []byte(" "))
		payload = append(payload, data)
	}
	return bytes.Join(payload, []byte("\n"))
}
