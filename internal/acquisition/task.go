// Package acquisition downloads ABI CMIP files from the NOAA bucket, cuts full disk files
// to a region and stores them under the local data tree.
package acquisition

import (
	"fmt"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/jonboulle/clockwork"
)

// Task is one file to acquire.
type Task struct {
	Product   abi.Product
	Band      int
	Timestamp time.Time
	Region    abi.Region
}

func (t Task) String() string {
	return fmt.Sprintf("%s B%02d %s", t.Product, t.Band, t.Timestamp.UTC().Format("2006-01-02 15:04UTC"))
}

// Tasks builds one task per timestamp and band, timestamps outermost.
func Tasks(product abi.Product, region abi.Region, bands []int, times []time.Time) []Task {
	tasks := make([]Task, 0, len(bands)*len(times))
	for _, ts := range times {
		for _, band := range bands {
			tasks = append(tasks, Task{Product: product, Band: band, Timestamp: ts.UTC().Truncate(time.Minute), Region: region})
		}
	}
	return tasks
}

// LatestAvailable estimates the newest scan start that is already in the bucket.
// Full disk scans start every 10 minutes and show up about 20 minutes later; mesoscale
// scans run every minute with a 2 minute delay.
func LatestAvailable(clock clockwork.Clock, product abi.Product) time.Time {
	now := clock.Now().UTC()
	var lag time.Duration
	if product.IsFullDisk() {
		lag = time.Duration((now.Minute()%10+20)*60+now.Second()) * time.Second
	} else {
		lag = time.Duration(2*60+now.Second()) * time.Second
	}
	return now.Add(-lag).Truncate(time.Minute)
}
