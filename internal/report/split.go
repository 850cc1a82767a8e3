// Package report renders the filtered view as a dated job digest.
package report

import (
	"sort"
	"time"

	"github.com/kailas-cloud/jobsift/internal/domain/record"
	"github.com/kailas-cloud/jobsift/internal/usecase/listing"
)

// Split partitions records into those dated on or after since and the rest.
// Both halves are ordered newest first; records whose date does not parse
// count as older and trail the older half in input order.
func Split(records []*record.Record, since time.Time, dateField string) (fresh, older []*record.Record) {
	if dateField == "" {
		dateField = listing.DefaultDateField
	}

	dates := make(map[*record.Record]time.Time, len(records))
	var undated []*record.Record
	for _, r := range records {
		at, ok := listing.ParseDate(r.Value(dateField))
		if !ok {
			undated = append(undated, r)
			continue
		}
		dates[r] = at
		if at.Before(since) {
			older = append(older, r)
		} else {
			fresh = append(fresh, r)
		}
	}

	newestFirst := func(s []*record.Record) {
		sort.SliceStable(s, func(i, j int) bool { return dates[s[i]].After(dates[s[j]]) })
	}
	newestFirst(fresh)
	newestFirst(older)
	older = append(older, undated...)
	return fresh, older
}
