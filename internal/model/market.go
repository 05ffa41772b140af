package model

// TickerSnapshot is one traded pair from the 24h ticker list.
type TickerSnapshot struct {
	Symbol        string
	LastPrice     float64
	ChangePercent float64
	High24h       float64
}

// Candle is a single price bar. Only the fields the screener reads are kept.
type Candle struct {
	OpenTime int64 // unix millis
	High     float64
	Close    float64
}
