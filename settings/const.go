package settings

import (
	"time"
)

const (
	DEFAULT_SEGMENT_SIZE = 10 * 1024 * 1024
	TICK                 = 100 * time.Millisecond
	TICK_SECONDS         = 0.1
	WORLD_WIDTH          = 20.0 // meters
	WORLD_HEIGHT         = 20.0 // meters
	TELEMETRY_QUEUE      = "avsimOut"
)
