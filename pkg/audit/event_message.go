package audit

import (
	"fmt"
	"strconv"
	"time"
)

// MessageEvent records messages being deleted from the admin CLI, either one
// by id ("delete") or a whole topic ("purge").
type MessageEvent struct {
	Actor        string
	Operation    string // "delete", "purge"
	Topic        string
	StoredID     int64
	Count        int64
	Success      bool
	ErrorMessage string
}

func (e MessageEvent) MessageID() string {
	return "message"
}

func (e MessageEvent) Message() string {
	target := fmt.Sprintf("message %d", e.StoredID)
	if e.Operation == "purge" {
		target = "messages of topic " + e.Topic
	}
	if e.Success {
		if e.Operation == "purge" {
			return fmt.Sprintf("%s purged %d %s", e.Actor, e.Count, target)
		}
		return fmt.Sprintf("%s deleted %s", e.Actor, target)
	}
	msg := fmt.Sprintf("%s failed to %s %s", e.Actor, e.Operation, target)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e MessageEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e MessageEvent) Facility() int {
	return FacilityUser
}

func (e MessageEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDClient: {
			"user": e.Actor,
		},
		SDIDSubject: {},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.Topic != "" {
		sd[SDIDSubject]["topic"] = e.Topic
	}
	if e.StoredID > 0 {
		sd[SDIDSubject]["message"] = strconv.FormatInt(e.StoredID, 10)
	}
	if e.Success {
		sd[SDIDAction]["count"] = strconv.FormatInt(e.Count, 10)
	}
	return sd
}

// CleanupEvent records a retention cleanup run.
type CleanupEvent struct {
	Actor        string
	Days         int
	Cutoff       time.Time
	Count        int64
	Success      bool
	ErrorMessage string
}

func (e CleanupEvent) MessageID() string {
	return "cleanup"
}

func (e CleanupEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s removed %d messages older than %d days", e.Actor, e.Count, e.Days)
	}
	msg := fmt.Sprintf("%s failed to remove messages older than %d days", e.Actor, e.Days)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e CleanupEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e CleanupEvent) Facility() int {
	return FacilityUser
}

func (e CleanupEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDClient: {
			"user": e.Actor,
		},
		SDIDSubject: {
			"cutoff": e.Cutoff.UTC().Format(time.RFC3339),
		},
		SDIDAction: {
			"operation": "cleanup",
			"result":    result(e.Success),
			"count":     strconv.FormatInt(e.Count, 10),
		},
	}
}
