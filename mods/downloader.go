package mods

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrFilesystem wraps directory-creation, file-creation and write failures.
var ErrFilesystem = errors.New("filesystem error")

// Fetcher streams the body of a URL into w.
type Fetcher interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Job is a single (URL, destination) pair.
type Job struct {
	TitleID     string
	TitleName   string
	URL         string
	Destination string
	SHA         string
}

// Result is the outcome of one Job.
type Result struct {
	Job
	Bytes int64
	Err   error
}

// Report collects the outcome of every job of a DownloadAll call, in job order.
type Report struct {
	Results []Result
}

func (r Report) Total() int { return len(r.Results) }

func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

func (r Report) Succeeded() int { return r.Total() - r.Failed() }

// EventKind identifies a progress event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventCompleted
	EventFailed
)

// Event reports progress of a single job. Finished counts jobs that have
// completed or failed so far.
type Event struct {
	Kind     EventKind
	Job      Job
	Bytes    int64
	Err      error
	Finished int
	Total    int
}

// Downloader fetches jobs with a bounded number of workers. A failed job
// never cancels its siblings; every job runs and its outcome is reported.
type Downloader struct {
	Fetcher Fetcher
	// Concurrency caps simultaneous transfers; <= 0 means unbounded.
	Concurrency int
	// Limiter paces request starts when non-nil.
	Limiter *rate.Limiter
	// OnProgress is called from worker goroutines and must be safe for concurrent use.
	OnProgress func(Event)

	log *zap.SugaredLogger
}

// NewDownloader builds a Downloader. requestsPerSecond <= 0 disables pacing.
func NewDownloader(fetcher Fetcher, concurrency int, requestsPerSecond float64, log *zap.SugaredLogger) *Downloader {
	d := &Downloader{Fetcher: fetcher, Concurrency: concurrency, log: log}
	if requestsPerSecond > 0 {
		d.Limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return d
}

// Jobs flattens every game's download entries into (URL, destination) pairs.
func Jobs(games []Game) []Job {
	var jobs []Job
	for _, g := range games {
		for _, e := range g.ModDownloadEntries {
			jobs = append(jobs, Job{
				TitleID:     g.TitleID,
				TitleName:   g.TitleName,
				URL:         e.DownloadURL,
				Destination: filepath.Join(g.ModDataLocation, filepath.FromSlash(e.ModRelativePath)),
				SHA:         e.SHA,
			})
		}
	}
	return jobs
}

// DownloadAll fetches every entry of games. The returned error combines all
// per-job failures; the Report is always complete.
func (d *Downloader) DownloadAll(ctx context.Context, games []Game) (Report, error) {
	jobs := Jobs(games)
	results := make([]Result, len(jobs))

	var g errgroup.Group
	if d.Concurrency > 0 {
		g.SetLimit(d.Concurrency)
	}

	var finished atomic.Int64
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			jobLog := d.log.With(zap.String("title_id", job.TitleID), zap.String("destination", job.Destination))
			d.emit(Event{Kind: EventStarted, Job: job, Finished: int(finished.Load()), Total: len(jobs)})

			n, err := d.fetch(ctx, job)
			results[i] = Result{Job: job, Bytes: n, Err: err}

			ev := Event{Kind: EventCompleted, Job: job, Bytes: n, Total: len(jobs)}
			if err != nil {
				ev.Kind = EventFailed
				ev.Err = err
				jobLog.Errorw("Download failed", zap.String("url", job.URL), zap.Error(err))
			} else {
				jobLog.Debugw("Downloaded file", zap.Int64("bytes", n))
			}
			ev.Finished = int(finished.Add(1))
			d.emit(ev)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: results}
	var errs error
	for _, res := range results {
		if res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", res.Destination, res.Err))
		}
	}

	d.log.Infow("Download run finished",
		zap.Int("total", report.Total()),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
	)
	return report, errs
}

func (d *Downloader) emit(ev Event) {
	if d.OnProgress != nil {
		d.OnProgress(ev)
	}
}

// fetch creates the destination and streams the URL into it. A partially
// written file is left in place on failure.
func (d *Downloader) fetch(ctx context.Context, job Job) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if d.Limiter != nil {
		if err := d.Limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}

	dir := filepath.Dir(job.Destination)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("%w: create directory %s: %w", ErrFilesystem, dir, err)
	}

	f, err := os.Create(job.Destination)
	if err != nil {
		return 0, fmt.Errorf("%w: create file: %w", ErrFilesystem, err)
	}

	n, err := d.Fetcher.Download(ctx, encodeSpaces(job.URL), fileWriter{f})
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("%w: close file: %w", ErrFilesystem, closeErr)
	}
	return n, err
}

func encodeSpaces(url string) string {
	return strings.ReplaceAll(url, " ", "%20")
}

// fileWriter tags write failures as filesystem errors.
type fileWriter struct {
	f *os.File
}

func (w fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: write: %w", ErrFilesystem, err)
	}
	return n, nil
}
