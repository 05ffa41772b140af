package model

import "time"

// Candidate is a ticker that passed the volatility filter.
// RSI is only meaningful once the candidate has been confirmed.
type Candidate struct {
	Symbol        string
	Price         float64
	ChangePercent float64
	High24h       float64
	RSI           float64
}

// RankedAlertList is ordered by ChangePercent, highest first.
type RankedAlertList []Candidate

// RunStatus is the terminal state of a single check.
type RunStatus string

const (
	RunAlertSent    RunStatus = "ALERT_SENT"
	RunNoCandidates RunStatus = "NO_CANDIDATES"
	RunFailed       RunStatus = "FAILED"
)

// RunResult is what the trigger reports back for every run.
type RunResult struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Message    string
	Scanned    int // tickers in the snapshot
	Volatile   int // survivors of the volatility filter
	Skipped    int // symbols dropped for fetch or history problems
	Alerts     RankedAlertList
	Delivered  bool // alert reached the notifier destination
	Err        error
}
