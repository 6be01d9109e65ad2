package storage

import (
	"io"
	"math"
)

// Progress is a single progress event emitted while a blob streams to storage.
type Progress struct {
	BytesTransferred int64
	TotalBytes       int64
}

// Percent reports the transfer as a rounded 0-100 percentage.
func (p Progress) Percent() int {
	if p.TotalBytes <= 0 {
		return 0
	}
	return int(math.Round(float64(p.BytesTransferred) / float64(p.TotalBytes) * 100))
}

// ProgressFunc receives progress events. It is called from the goroutine
// driving the upload; implementations should return quickly.
type ProgressFunc func(Progress)

// NewProgressReader wraps a reader so each chunk read emits a Progress event,
// making transfer progress observable incrementally rather than only at the
// start and end.
func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, total: total, fn: fn}
}

type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	fn          ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.transferred += int64(n)
		pr.fn(Progress{BytesTransferred: pr.transferred, TotalBytes: pr.total})
	}
	return n, err
}
