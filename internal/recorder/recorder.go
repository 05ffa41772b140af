package recorder

import "CoinSentinel/internal/model"

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(res *model.RunResult) error
	Close() error
}
