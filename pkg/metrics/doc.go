// Package metrics exposes Prometheus counters and histograms for webhook
// publishing.
package metrics
