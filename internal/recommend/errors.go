package recommend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// FallbackMessage is shown whenever a failure carries no backend detail.
const FallbackMessage = "An error occurred while fetching recommendations"

// APIError is a non-2xx reply from the backend.
type APIError struct {
	StatusCode int
	// Detail is the backend's human-readable reason, possibly empty.
	Detail    string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("recommend: HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("recommend: HTTP %d", e.StatusCode)
}

// ErrorMessage is the text shown to the user for a failed search: the
// backend detail when there is one, otherwise FallbackMessage.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return FallbackMessage
}

// parseDetail extracts the "detail" field of an error body. FastAPI sends a
// string for raised HTTPExceptions and a list of objects for request
// validation failures; the messages of the latter are joined with "; ".
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}

	var obj struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Detail, &obj); err == nil {
		if obj.Msg != "" {
			return obj.Msg
		}
		return obj.Message
	}
	return ""
}
