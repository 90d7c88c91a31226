package model

import "time"

// Candle represents a single OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Ticker is a point-in-time quote for a symbol.
type Ticker struct {
	Symbol     string
	Last       float64
	High       float64
	Low        float64
	BaseVolume float64
	Percentage float64 // change vs. the day's open, in percent
	Time       time.Time
}
