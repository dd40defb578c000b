package audit

import "fmt"

// TopicEvent records a topic being created or changed from the admin CLI.
type TopicEvent struct {
	Actor        string
	Operation    string // "create", "update"
	Topic        string
	NewName      string
	KeyRotated   bool
	Success      bool
	ErrorMessage string
}

func (e TopicEvent) MessageID() string {
	return "topic"
}

func (e TopicEvent) Message() string {
	if !e.Success {
		msg := fmt.Sprintf("%s failed to %s topic %s", e.Actor, e.Operation, e.Topic)
		if e.ErrorMessage != "" {
			msg += ": " + e.ErrorMessage
		}
		return msg
	}

	if e.Operation == "create" {
		return fmt.Sprintf("%s created topic %s", e.Actor, e.Topic)
	}
	msg := fmt.Sprintf("%s updated topic %s", e.Actor, e.Topic)
	if e.NewName != "" {
		msg += fmt.Sprintf(", renamed to %s", e.NewName)
	}
	if e.KeyRotated {
		msg += ", key rotated"
	}
	return msg
}

func (e TopicEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e TopicEvent) Facility() int {
	return FacilityUser
}

func (e TopicEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDClient: {
			"user": e.Actor,
		},
		SDIDSubject: {
			"topic": e.Topic,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.NewName != "" {
		sd[SDIDSubject]["new_name"] = e.NewName
	}
	if e.KeyRotated {
		sd[SDIDAction]["key_rotated"] = "true"
	}
	return sd
}
