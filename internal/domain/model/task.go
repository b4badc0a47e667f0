package model

import (
	"time"

	types "github.com/okian/tourintel/internal/domain/types"
)

// RefreshTask is a unit of cache refresh work flowing from the sweep
// loop through the queue to a worker.
type RefreshTask struct {
	Key        string // cache key the task refreshes
	Query      string
	Region     types.Region
	Force      bool // bypass staleness checks
	EnqueuedAt time.Time
}
