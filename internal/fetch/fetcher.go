package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"runtime"
	"time"
)

// yieldQuantum is the number of received bytes between scheduler yields.
// Package var so tests can lower it.
var yieldQuantum int64 = 32 << 20

// Fetcher downloads a large artifact as a stream of chunks and assembles
// it into a single buffer once the stream is exhausted. Chunks are kept
// only until assembly, bounding peak memory to roughly twice the payload.
type Fetcher struct {
	client     *http.Client
	onProgress func(Progress)
	// yield suspends the goroutine after each quantum of received bytes so
	// long downloads do not starve the scheduler.
	yield func()
}

// New constructs a Fetcher. onProgress may be nil.
func New(onProgress func(Progress)) *Fetcher {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0: artifact downloads can legitimately run for minutes,
	// deadlines are carried by the request context.
	return &Fetcher{
		client:     &http.Client{Transport: tr, Timeout: 0},
		onProgress: onProgress,
		yield:      runtime.Gosched,
	}
}

// Fetch streams the body of url into memory and returns the assembled buffer.
// Non-2xx responses and transport failures return a load error
// (IsLoadError). Cancellation is polled per chunk; a cancelled fetch returns
// ctx.Err() and never publishes a final progress signal.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, loadError{url: url, msg: err.Error()}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, loadError{url: url, msg: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, loadError{url: url, msg: "unexpected status " + resp.Status}
	}

	// ContentLength is -1 when the server does not declare one; a declared
	// size of 0 or 1 is treated as bogus as well.
	declared := resp.ContentLength

	var (
		chunks    [][]byte
		loaded    int64
		lastYield int64
		last      float64
		buf       = make([]byte, 1<<20)
	)
	publish := func(p Progress) {
		if f.onProgress == nil {
			return
		}
		if p.Percent < last {
			p.Percent = last
		}
		last = p.Percent
		f.onProgress(p)
	}

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			chunks = append(chunks, chunk)
			loaded += int64(n)
			fetchBytesTotal.Add(float64(n))
			publish(Progress{Percent: estimate(loaded, declared), BytesLoaded: loaded, Total: declared})
			if loaded-lastYield >= yieldQuantum {
				lastYield = loaded
				f.yield()
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, loadError{url: url, msg: rerr.Error()}
		}
	}

	// Assemble once, in receipt order, then drop the chunk list.
	out := make([]byte, loaded)
	off := 0
	for i, c := range chunks {
		off += copy(out[off:], c)
		chunks[i] = nil
	}
	chunks = nil
	f.yield()

	// A cancellation that raced the end of the stream still wins: do not
	// publish a ready result after the caller gave up.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	publish(Progress{Percent: 100, BytesLoaded: loaded, Total: declared})
	return out, nil
}
