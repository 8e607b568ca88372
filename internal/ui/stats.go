package ui

import "sync/atomic"

type Stats struct {
	TotalMangas   atomic.Int64
	TotalChapters atomic.Int64
	TotalImages   atomic.Int64
	TotalBytes    atomic.Int64
}
