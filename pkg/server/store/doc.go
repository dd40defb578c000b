// Package store provides storage abstractions for the threadly server.
//
// This package defines interfaces for database operations, allowing the
// ingestion pipeline, the HTTP endpoints and the admin CLI to be decoupled
// from the specific database implementation. Every operation returns plain
// records; nothing handed out keeps a reference to a database session.
//
// # Available Stores
//
//   - TopicsStore: topic creation, lookup, rename and key rotation
//   - MessagesStore: message persistence, listing, deletion and retention cleanup
//   - AccessLogStore: client address records used for auditing and rate limiting
//   - HealthStore: connectivity checks
//
// # Usage
//
//	topics := gorm.NewTopicsStore(db, hasher)
//	topic, err := topics.GetTopicByName(ctx, "alerts")
//	if err != nil {
//	    if errors.Is(err, store.ErrTopicNotFound) {
//	        // Handle not found
//	    }
//	}
package store
