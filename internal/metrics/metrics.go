// Package metrics exposes application metrics collectors.
package metrics

const namespace = "dailypoints"

var durationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
