// Package ingest implements the webhook publish pipeline.
//
// A publish attempt moves through validation, topic lookup, key
// verification, the per-address rate limit and persistence. It ends in
// exactly one Reason, which also fixes the HTTP status and body the
// transport sends back. Writing the access log entry after persistence is
// best effort: a failure there is logged and reported on the Outcome but
// the message stays accepted.
//
// Decode handles the JSON body. ReasonInvalidPayload only ever comes from
// there, so the transport reports it through Reject instead of Publish.
package ingest
