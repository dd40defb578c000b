package ingest

import "net/http"

//go:generate go run github.com/dmarkham/enumer -type Reason -trimprefix Reason -transform snake -json -output reason.gen.go

// Reason is the terminal result of a publish attempt.
type Reason int

const (
	ReasonAccepted Reason = iota
	ReasonInvalidPayload
	ReasonMissingFields
	ReasonUnknownTopic
	ReasonInvalidKey
	ReasonRateLimited
	ReasonTopicMisconfigured
	ReasonInternalError
)

// Category groups reasons by who is at fault and how the caller should react.
type Category string

const (
	CategoryNone       Category = ""
	ClientInputError   Category = "ClientInputError"
	AuthorizationError Category = "AuthorizationError"
	RateLimitError     Category = "RateLimitError"
	ConfigurationError Category = "ConfigurationError"
	InternalError      Category = "InternalError"
)

// Category returns the error category of a rejection, or CategoryNone for
// an accepted message.
func (r Reason) Category() Category {
	switch r {
	case ReasonInvalidPayload, ReasonMissingFields:
		return ClientInputError
	case ReasonUnknownTopic, ReasonInvalidKey:
		return AuthorizationError
	case ReasonRateLimited:
		return RateLimitError
	case ReasonTopicMisconfigured:
		return ConfigurationError
	case ReasonAccepted:
		return CategoryNone
	default:
		return InternalError
	}
}

// Status is the HTTP status code reported for the reason.
func (r Reason) Status() int {
	switch r.Category() {
	case CategoryNone:
		return http.StatusOK
	case ClientInputError:
		return http.StatusBadRequest
	case AuthorizationError:
		return http.StatusForbidden
	case RateLimitError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Text is the human readable message sent back to the publisher.
func (r Reason) Text() string {
	switch r {
	case ReasonAccepted:
		return "Message received"
	case ReasonInvalidPayload:
		return "Invalid JSON payload"
	case ReasonMissingFields:
		return "Missing fields"
	case ReasonUnknownTopic:
		return "Invalid topic"
	case ReasonInvalidKey:
		return "Invalid key"
	case ReasonRateLimited:
		return "Too many requests"
	case ReasonTopicMisconfigured:
		return "Topic key not set"
	default:
		return "Internal server error"
	}
}

// Body is the JSON response body for the reason: {"status": ...} when
// accepted, {"error": ...} otherwise.
func (r Reason) Body() map[string]string {
	if r == ReasonAccepted {
		return map[string]string{"status": r.Text()}
	}
	return map[string]string{"error": r.Text()}
}

// ServerFault reports whether the failure lies with the service rather than
// the publisher.
func (r Reason) ServerFault() bool {
	c := r.Category()
	return c == ConfigurationError || c == InternalError
}
