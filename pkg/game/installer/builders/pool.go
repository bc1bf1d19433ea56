package builders

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"limeal.fr/cobalt/pkg/utils"
)

// Job is a single file to fetch into the game directory.
type Job struct {
	Name string
	URL  string
	Dest string
	Sha1 string
	Size int64
}

// Fetcher downloads url into dest. *utils.Downloader satisfies it.
type Fetcher interface {
	Download(ctx context.Context, url, dest, description string) error
}

// Pool downloads jobs with a bounded number of workers.
type Pool struct {
	Fetcher  Fetcher
	Workers  int
	Progress utils.ProgressCallback
}

// Present reports whether the job's destination already holds the expected file.
func (j Job) Present() bool {
	info, err := os.Stat(j.Dest)
	if err != nil || info.IsDir() {
		return false
	}
	if j.Sha1 != "" {
		return utils.FileSHA1(j.Dest) == j.Sha1
	}
	return j.Size == 0 || info.Size() == j.Size
}

// Missing filters out jobs whose files are already in place.
func Missing(jobs []Job) []Job {
	out := make([]Job, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if seen[j.Dest] || j.Present() {
			continue
		}
		seen[j.Dest] = true
		out = append(out, j)
	}
	return out
}

// Run downloads the missing jobs. The first error cancels the remaining work
// and is returned.
func (p *Pool) Run(ctx context.Context, section string, jobs []Job) error {
	todo := Missing(jobs)
	total := len(todo)
	if total == 0 {
		return nil
	}

	numWorkers := p.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > total {
		numWorkers = total
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobChan := make(chan Job, total)
	var (
		wg         sync.WaitGroup
		once       sync.Once
		firstError error
		done       int64
	)

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				if ctx.Err() != nil {
					continue
				}
				if err := p.Fetcher.Download(ctx, job.URL, job.Dest, ""); err != nil {
					once.Do(func() {
						firstError = fmt.Errorf("failed to download %s: %w", job.Name, err)
						cancel()
					})
					continue
				}
				if job.Sha1 != "" {
					if got := utils.FileSHA1(job.Dest); got != job.Sha1 {
						once.Do(func() {
							firstError = fmt.Errorf("checksum mismatch for %s: got %s, want %s", job.Name, got, job.Sha1)
							cancel()
						})
						continue
					}
				}

				n := atomic.AddInt64(&done, 1)
				if p.Progress != nil {
					p.Progress(section, int(n), total, job.Name)
				}
			}
		}()
	}

	for _, job := range todo {
		jobChan <- job
	}
	close(jobChan)
	wg.Wait()

	if firstError != nil {
		return firstError
	}
	return ctx.Err()
}
