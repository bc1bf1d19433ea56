package utils

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// ProgressCallback reports count based progress for a named section.
type ProgressCallback func(section string, current int, total int, description string)

// NewBytesBar returns a byte progress bar. total may be -1 when unknown.
func NewBytesBar(total int64, description string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// BarProgress returns a ProgressCallback drawing one count bar per section on w.
func BarProgress(w io.Writer) ProgressCallback {
	var (
		mu      sync.Mutex
		section string
		bar     *progressbar.ProgressBar
	)

	return func(s string, current int, total int, description string) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil || s != section {
			if bar != nil {
				_ = bar.Finish()
			}
			section = s
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(s),
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprint(w, "\n")
				}),
			)
		}
		_ = bar.Set(current)
	}
}
