package reconciler

import "time"

const (
	defaultBatchSize       = 250
	defaultRecordBatchSize = 250
	defaultPacing          = 3 * time.Second
)
