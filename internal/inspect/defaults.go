package inspect

import "time"

const (
	defaultWorkerCount  = 8
	defaultPollInterval = 5 * time.Second
	defaultMaxBackoff   = 1 * time.Minute
)
