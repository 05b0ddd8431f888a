package session

import (
	"math"
	"time"
)

// Snapshot is a derived throughput sample. It is recomputed from the inputs
// every time and never stored.
type Snapshot struct {
	Tokens          int
	ElapsedSeconds  float64
	TokensPerSecond float64
}

// Sample computes a throughput snapshot for the given token count and
// elapsed time. Tokens-per-second is rounded to two decimals for display.
func Sample(tokens int, elapsed time.Duration) Snapshot {
	secs := elapsed.Seconds()
	var tps float64
	if secs > 0 {
		tps = math.Round(float64(tokens)/secs*100) / 100
	}
	return Snapshot{
		Tokens:          tokens,
		ElapsedSeconds:  secs,
		TokensPerSecond: tps,
	}
}
