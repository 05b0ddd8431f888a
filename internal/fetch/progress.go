package fetch

// The loader reports progress on the shared 0-100 scale used by the client:
// a fixed allowance for runtime init, then the download span, then the
// remainder for post-processing (assembly, engine construction). 100 is
// published exactly once, after assembly.
const (
	initAllowance  = 10.0
	downloadSpan   = 76.0
	unknownSizeCap = 91.0
	// assumedSize stands in for the declared size when the response carries
	// none; it only shapes the curve below the cap.
	assumedSize = int64(500 << 20)
)

// Progress is one telemetry sample for an in-flight fetch.
type Progress struct {
	// Percent on the overall 0-100 scale, monotonically non-decreasing.
	Percent float64
	// BytesLoaded received so far.
	BytesLoaded int64
	// Total declared by the server, or -1/0 when unknown.
	Total int64
}

// estimate maps bytes received onto the overall progress scale. A declared
// size must exceed one byte to be trusted; otherwise the estimate is built
// from assumedSize and capped so the loader never signals near-completion
// before the real end of the stream is known.
func estimate(loaded, declared int64) float64 {
	if declared > 1 {
		p := initAllowance + float64(loaded)/float64(declared)*downloadSpan
		if p > initAllowance+downloadSpan {
			p = initAllowance + downloadSpan
		}
		return p
	}
	p := initAllowance + float64(loaded)/float64(assumedSize)*downloadSpan
	if p > unknownSizeCap {
		p = unknownSizeCap
	}
	return p
}
