// Package ratelimit implements the per-address request limit for webhook
// publishing.
//
// The window is evaluated at query time: the limiter counts access log
// rows for the address whose created_at falls within the trailing window
// and rejects once the count reaches the limit. The caller records the
// access log row only after a request is accepted, so a request never
// counts against itself.
//
//	limiter := ratelimit.New(accessLogs, ratelimit.DefaultPolicy)
//	limited, err := limiter.IsRateLimited(ctx, "203.0.113.7")
package ratelimit
