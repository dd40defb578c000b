// Package model defines the database models for threadly.
//
// These are GORM models mapped onto the schema created by the versioned
// migrations under db/migrations. They are used only inside the storage
// layer; everything above it receives the plain records from
// pkg/server/store.
//
// # Models
//
//   - Topic: a named channel and the bcrypt digest of its publishing key
//   - Message: a title/body payload owned by exactly one topic
//   - AccessLog: the client address recorded for an accepted publish
//
// # Database Schema
//
//   - topics: unique name, key_hash
//   - messages: topic_id references topics(id)
//   - access_logs: message_id references messages(id) ON DELETE CASCADE,
//     indexed on (ip_address, created_at) for rate-limit counting
//
// Timestamps are always written in UTC by the application, never by a
// database default.
package model
