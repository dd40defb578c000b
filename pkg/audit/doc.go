// Package audit records security relevant threadly operations as RFC5424
// syslog lines.
//
// Every publish attempt produces a PublishEvent, whether it was accepted or
// rejected. Administrative changes (topic create and update, message
// delete and purge, retention cleanup) produce TopicEvent, MessageEvent and
// CleanupEvent records.
//
// # Usage
//
//	audit.Log(audit.PublishEvent{Topic: "alerts", ClientIP: ip, Success: true})
//
// Lines go to stdout. When AUDIT_DATABASE_URL is set the events are also
// stored in the audit_events table of that postgres database.
// THREADLY_AUDIT_ENABLED=false turns auditing off.
package audit
