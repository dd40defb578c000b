package audit

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	event := PublishEvent{
		RequestID: "5f0c",
		Topic:     "alerts",
		ClientIP:  "192.168.1.1",
		StoredID:  42,
		Success:   true,
	}

	logger.Log(event)

	output := buf.String()

	// <PRI>1 TIMESTAMP HOST APP PID MSGID
	header := regexp.MustCompile(`^<86>1 \d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z \S+ threadly \d+ publish \[`)
	if !header.MatchString(output) {
		t.Errorf("unexpected header in %q", output)
	}
	if !strings.Contains(output, `[client@32473 ip="192.168.1.1"]`) {
		t.Error("Expected client IP in output")
	}
	if !strings.Contains(output, `[request@32473 id="5f0c"]`) {
		t.Error("Expected request id in output")
	}
	if !strings.HasSuffix(output, "192.168.1.1 published message 42 to topic alerts\n") {
		t.Errorf("unexpected message in %q", output)
	}
}

func TestFormatStructuredData(t *testing.T) {
	sd := map[string]map[string]string{
		SDIDSubject: {"topic": `a"b]c\d`, "message": "7"},
		SDIDAction:  {"result": "success", "operation": "publish"},
	}

	got := formatStructuredData(sd)
	want := `[action@32473 operation="publish" result="success"]` +
		`[subject@32473 message="7" topic="a\"b\]c\\d"]`
	if got != want {
		t.Errorf("formatStructuredData() = %q, want %q", got, want)
	}

	if got := formatStructuredData(nil); got != "" {
		t.Errorf("formatStructuredData(nil) = %q, want empty", got)
	}
}

func TestPublishEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     PublishEvent
		wantMsg   string
		wantSev   Severity
		wantExtra map[string]string
	}{
		{
			name: "accepted",
			event: PublishEvent{
				Topic:    "alerts",
				ClientIP: "10.0.0.1",
				StoredID: 3,
				Reason:   "accepted",
				Success:  true,
			},
			wantMsg:   "10.0.0.1 published message 3 to topic alerts",
			wantSev:   SeverityInfo,
			wantExtra: map[string]string{"message": "3"},
		},
		{
			name: "rejected",
			event: PublishEvent{
				Topic:    "alerts",
				ClientIP: "10.0.0.1",
				Reason:   "invalid_key",
			},
			wantMsg: "10.0.0.1 failed to publish to topic alerts: invalid_key",
			wantSev: SeverityWarning,
		},
		{
			name: "server fault",
			event: PublishEvent{
				Topic:       "alerts",
				ClientIP:    "10.0.0.1",
				Reason:      "internal_error",
				ServerFault: true,
			},
			wantMsg: "10.0.0.1 failed to publish to topic alerts: internal_error",
			wantSev: SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Message(); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.event.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}
			if got := tt.event.Facility(); got != FacilityAuthPriv {
				t.Errorf("Facility() = %v, want %v", got, FacilityAuthPriv)
			}
			if got := tt.event.MessageID(); got != "publish" {
				t.Errorf("MessageID() = %q, want publish", got)
			}

			sd := tt.event.StructuredData()
			if sd[SDIDAction]["reason"] != tt.event.Reason {
				t.Errorf("reason = %q, want %q", sd[SDIDAction]["reason"], tt.event.Reason)
			}
			for k, v := range tt.wantExtra {
				if sd[SDIDSubject][k] != v {
					t.Errorf("subject %s = %q, want %q", k, sd[SDIDSubject][k], v)
				}
			}
			if _, ok := sd[SDIDRequest]; ok {
				t.Error("request element present without a request id")
			}
		})
	}
}

func TestPublishEventNeverCarriesKey(t *testing.T) {
	event := PublishEvent{Topic: "alerts", ClientIP: "10.0.0.1", Success: true}
	for _, params := range event.StructuredData() {
		if _, ok := params["key"]; ok {
			t.Fatal("structured data must not contain a key param")
		}
	}
}

func TestTopicEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   TopicEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "create",
			event:   TopicEvent{Actor: "ops", Operation: "create", Topic: "alerts", Success: true},
			wantMsg: "ops created topic alerts",
			wantSev: SeverityNotice,
		},
		{
			name: "rename and rotate",
			event: TopicEvent{
				Actor: "ops", Operation: "update", Topic: "alerts",
				NewName: "alarms", KeyRotated: true, Success: true,
			},
			wantMsg: "ops updated topic alerts, renamed to alarms, key rotated",
			wantSev: SeverityNotice,
		},
		{
			name: "failed",
			event: TopicEvent{
				Actor: "ops", Operation: "create", Topic: "alerts",
				ErrorMessage: "topic name already exists",
			},
			wantMsg: "ops failed to create topic alerts: topic name already exists",
			wantSev: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Message(); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.event.Severity(); got != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", got, tt.wantSev)
			}
			if got := tt.event.Facility(); got != FacilityUser {
				t.Errorf("Facility() = %v, want %v", got, FacilityUser)
			}
		})
	}
}

func TestMessageEvent(t *testing.T) {
	deleted := MessageEvent{Actor: "ops", Operation: "delete", StoredID: 9, Count: 1, Success: true}
	if got, want := deleted.Message(), "ops deleted message 9"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if got := deleted.StructuredData()[SDIDSubject]["message"]; got != "9" {
		t.Errorf("message param = %q, want 9", got)
	}

	purged := MessageEvent{Actor: "ops", Operation: "purge", Topic: "alerts", Count: 4, Success: true}
	if got, want := purged.Message(), "ops purged 4 messages of topic alerts"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if got := purged.StructuredData()[SDIDAction]["count"]; got != "4" {
		t.Errorf("count param = %q, want 4", got)
	}

	failed := MessageEvent{Actor: "ops", Operation: "delete", StoredID: 9, ErrorMessage: "message not found"}
	if got, want := failed.Message(), "ops failed to delete message 9: message not found"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if failed.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want warning", failed.Severity())
	}
}

func TestCleanupEvent(t *testing.T) {
	cutoff := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	event := CleanupEvent{Actor: "cron", Days: 90, Cutoff: cutoff, Count: 12, Success: true}

	if got, want := event.Message(), "cron removed 12 messages older than 90 days"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	sd := event.StructuredData()
	if got := sd[SDIDSubject]["cutoff"]; got != "2024-03-03T12:00:00Z" {
		t.Errorf("cutoff = %q", got)
	}
	if got := sd[SDIDAction]["count"]; got != "12" {
		t.Errorf("count = %q", got)
	}
}

func TestLogDisabled(t *testing.T) {
	var buf bytes.Buffer
	DefaultLogger.SetWriter(&buf)
	SetEnabled(false)
	t.Cleanup(func() { SetEnabled(true) })

	Log(PublishEvent{Topic: "alerts", ClientIP: "10.0.0.1", Success: true})

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}
}
