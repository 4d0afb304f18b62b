package storage

import (
	"fmt"
	"time"
)

// Storage layout: the input bucket holds query descriptors under input/ and
// news snapshots under news/; the output bucket holds the summary object.
const (
	NewsPrefix = "news/"

	// LegacyQueryKey and LegacySummaryKey are the fixed keys older
	// deployments used. Concurrent requests overwrite each other under this
	// scheme, so it is only kept as a compatibility mode.
	LegacyQueryKey   = "input/query.json"
	LegacySummaryKey = "output/summary.json"
)

const timestampLayout = "2006-01-02-15-04-05"

// NewsKey builds the object key for a news snapshot. The request ID keeps
// concurrent requests from colliding; pass an empty ID for the legacy
// timestamp-only naming.
func NewsKey(ts time.Time, requestID string) string {
	stamp := ts.UTC().Format(timestampLayout)
	if requestID == "" {
		return fmt.Sprintf("%snews_%s.json", NewsPrefix, stamp)
	}
	return fmt.Sprintf("%snews_%s_%s.json", NewsPrefix, stamp, requestID)
}

// QueryKey builds the descriptor key for a request. An empty ID selects the
// legacy fixed key.
func QueryKey(requestID string) string {
	if requestID == "" {
		return LegacyQueryKey
	}
	return fmt.Sprintf("input/query_%s.json", requestID)
}

// SummaryKey builds the output key a request's summary is written to. An
// empty ID selects the legacy fixed key.
func SummaryKey(requestID string) string {
	if requestID == "" {
		return LegacySummaryKey
	}
	return fmt.Sprintf("output/summary_%s.json", requestID)
}
