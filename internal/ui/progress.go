package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// ChunkProgress renders dependency-resolution progress, one step per chunk.
// It is safe for concurrent Advance calls.
type ChunkProgress struct {
	mu          sync.Mutex
	out         io.Writer
	description string
	bar         *progressbar.ProgressBar
	failed      int
}

// NewChunkProgress creates a progress renderer writing to out
func NewChunkProgress(out io.Writer, description string) *ChunkProgress {
	return &ChunkProgress{out: out, description: description}
}

// Start sizes the bar for total chunks
func (p *ChunkProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed = 0
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Advance records one finished chunk
func (p *ChunkProgress) Advance(_ string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		return
	}
	if err != nil {
		p.failed++
		p.bar.Describe(fmt.Sprintf("%s (%d failed)", p.description, p.failed))
	}
	_ = p.bar.Add(1)
}

// Finish completes and clears the bar
func (p *ChunkProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Failed returns the number of chunks reported as failed
func (p *ChunkProgress) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}
