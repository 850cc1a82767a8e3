package listing

import "time"

// Observer receives engine rebuild measurements.
type Observer interface {
	ObserveRebuild(duration time.Duration, records, facets, filtered int)
}

type nopObserver struct{}

func (nopObserver) ObserveRebuild(time.Duration, int, int, int) {}
