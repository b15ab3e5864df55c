package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/shared"
	"golang.org/x/time/rate"
)

// BulkUploadOpts contains configuration for bulk file uploads.
type BulkUploadOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, capped at 8)
	RateLimit  float64 // Requests per second (default: 5)
}

// FileUploadResult records the outcome of one file upload.
type FileUploadResult struct {
	Path    string               `json:"path"`
	Success bool                 `json:"success"`
	Result  *models.UploadResult `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
}

// BulkUploadResult summarizes a bulk upload run. BatchID identifies the run
// in logs and saved summaries; individual uploads keep server-assigned ids.
type BulkUploadResult struct {
	BatchID           string             `json:"batch_id"`
	TotalFiles        int                `json:"total_files"`
	SuccessfulUploads int                `json:"successful_uploads"`
	FailedUploads     int                `json:"failed_uploads"`
	Results           []FileUploadResult `json:"results"`
}

// BulkUpload sends multiple local files to the library concurrently with rate
// limiting and progress tracking.
//
// A worker pool drains the file list while a shared limiter keeps the request
// rate under the server's tolerance. Individual failures are recorded, not
// fatal; the summary reports both counts.
func (e *Engine) BulkUpload(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	paths []string,
	opts BulkUploadOpts,
) (*BulkUploadResult, error) {
	if e.media == nil {
		return nil, fmt.Errorf("%w: media gateway not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &BulkUploadResult{
		BatchID:    shared.GenerateID(),
		TotalFiles: len(paths),
		Results:    make([]FileUploadResult, 0, len(paths)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(paths))
	results := make(chan FileUploadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.uploadWorker(ctx, &wg, limiter, jobs, results)
	}

	go func() {
		for i, path := range paths {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			e.sendProgress(progress, uploadingUpdate(i+1, len(paths), path))
			jobs <- path
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulUploads++
			e.sendProgress(progress, uploadCompletedUpdate(completed, len(paths), res.Path))
		} else {
			result.FailedUploads++
			e.sendProgress(progress, uploadFailedUpdate(completed, len(paths), res.Path, fmt.Errorf("%s", res.Error)))
		}
	}

	return result, nil
}

// uploadWorker is a worker goroutine that uploads files from the jobs channel.
func (e *Engine) uploadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan string,
	results chan<- FileUploadResult,
) {
	defer wg.Done()

	for path := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			results <- FileUploadResult{Path: path, Success: false, Error: err.Error()}
			continue
		}

		uploaded, err := e.media.Upload(ctx, path)
		if err != nil {
			results <- FileUploadResult{Path: path, Success: false, Error: err.Error()}
			continue
		}
		results <- FileUploadResult{Path: path, Success: true, Result: uploaded}
	}
}
