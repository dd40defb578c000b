package audit

import (
	"fmt"
	"strconv"
)

// PublishEvent records one webhook publish attempt.
type PublishEvent struct {
	RequestID   string
	Topic       string
	ClientIP    string
	StoredID    int64
	Reason      string
	Success     bool
	ServerFault bool
}

func (e PublishEvent) MessageID() string {
	return "publish"
}

func (e PublishEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s published message %d to topic %s", e.ClientIP, e.StoredID, e.Topic)
	}
	msg := fmt.Sprintf("%s failed to publish to topic %s", e.ClientIP, e.Topic)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e PublishEvent) Severity() Severity {
	switch {
	case e.Success:
		return SeverityInfo
	case e.ServerFault:
		return SeverityError
	default:
		return SeverityWarning
	}
}

func (e PublishEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PublishEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"topic": e.Topic,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "publish",
			"result":    result(e.Success),
		},
	}
	if e.StoredID > 0 {
		sd[SDIDSubject]["message"] = strconv.FormatInt(e.StoredID, 10)
	}
	if e.Reason != "" {
		sd[SDIDAction]["reason"] = e.Reason
	}
	if e.RequestID != "" {
		sd[SDIDRequest] = map[string]string{"id": e.RequestID}
	}
	return sd
}
