package statistics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Statistics contains aggregate counters for one compression batch.
type Statistics struct {
	JobsTotal      int64
	JobsProcessed  int64
	JobsCompressed int64
	JobsSkipped    int64
	JobsFailed     int64
	JobsOptimized  int64

	BytesIn  int64
	BytesOut int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Errors []StatError

	mutex sync.RWMutex
}

// StatError represents an error that occurred during processing.
type StatError struct {
	FilePath  string    `json:"file_path"`
	Operation string    `json:"operation"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a copy of the counters safe to serialize.
type Snapshot struct {
	Total           int64         `json:"total"`
	Processed       int64         `json:"processed"`
	Compressed      int64         `json:"compressed"`
	Skipped         int64         `json:"skipped"`
	Failed          int64         `json:"failed"`
	Optimized       int64         `json:"optimized"`
	BytesIn         int64         `json:"bytes_in"`
	BytesOut        int64         `json:"bytes_out"`
	PercentageSaved float64       `json:"percentage_saved"`
	Duration        time.Duration `json:"duration"`
	Errors          []StatError   `json:"errors"`
}

// NewStatistics returns a new Statistics instance.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
		Errors:    make([]StatError, 0),
	}
}

// SetTotal records how many jobs the batch contains.
func (s *Statistics) SetTotal(n int) {
	atomic.StoreInt64(&s.JobsTotal, int64(n))
}

// IncrementProcessed increases the count of processed jobs by 1.
func (s *Statistics) IncrementProcessed() {
	atomic.AddInt64(&s.JobsProcessed, 1)
}

// RecordCompressed counts a successful job and its byte sizes.
func (s *Statistics) RecordCompressed(original, compressed int64, optimized bool) {
	atomic.AddInt64(&s.JobsCompressed, 1)
	atomic.AddInt64(&s.BytesIn, original)
	atomic.AddInt64(&s.BytesOut, compressed)
	if optimized {
		atomic.AddInt64(&s.JobsOptimized, 1)
	}
}

// IncrementSkipped increases the count of skipped jobs by 1.
func (s *Statistics) IncrementSkipped() {
	atomic.AddInt64(&s.JobsSkipped, 1)
}

// IncrementFailed increases the count of failed jobs by 1.
func (s *Statistics) IncrementFailed() {
	atomic.AddInt64(&s.JobsFailed, 1)
}

// AddError records an error that occurred during processing.
func (s *Statistics) AddError(filePath, operation, errorMsg string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.Errors = append(s.Errors, StatError{
		FilePath:  filePath,
		Operation: operation,
		Error:     errorMsg,
		Timestamp: time.Now(),
	})
}

// Finalize records the end time and duration.
func (s *Statistics) Finalize() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// HasFailures reports whether any job failed.
func (s *Statistics) HasFailures() bool {
	return atomic.LoadInt64(&s.JobsFailed) > 0
}

// Snapshot returns a consistent copy of the counters.
func (s *Statistics) Snapshot() Snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	in := atomic.LoadInt64(&s.BytesIn)
	out := atomic.LoadInt64(&s.BytesOut)
	var saved float64
	if in > 0 {
		saved = float64(in-out) / float64(in) * 100
	}

	errs := make([]StatError, len(s.Errors))
	copy(errs, s.Errors)

	return Snapshot{
		Total:           atomic.LoadInt64(&s.JobsTotal),
		Processed:       atomic.LoadInt64(&s.JobsProcessed),
		Compressed:      atomic.LoadInt64(&s.JobsCompressed),
		Skipped:         atomic.LoadInt64(&s.JobsSkipped),
		Failed:          atomic.LoadInt64(&s.JobsFailed),
		Optimized:       atomic.LoadInt64(&s.JobsOptimized),
		BytesIn:         in,
		BytesOut:        out,
		PercentageSaved: saved,
		Duration:        s.Duration,
		Errors:          errs,
	}
}

// GetSummary returns a formatted summary of all statistics.
func (s *Statistics) GetSummary() string {
	snap := s.Snapshot()
	return fmt.Sprintf(`Batch Summary:
		Jobs: %d
		Compressed: %d
		Skipped: %d
		Failed: %d
		Optimized: %d
		Bytes In: %s
		Bytes Out: %s
		Saved: %.1f%%
		Duration: %v`,
		snap.Total,
		snap.Compressed,
		snap.Skipped,
		snap.Failed,
		snap.Optimized,
		FormatBytes(snap.BytesIn),
		FormatBytes(snap.BytesOut),
		snap.PercentageSaved,
		snap.Duration)
}

// GetErrorSummary returns a summary of errors that occurred during processing.
func (s *Statistics) GetErrorSummary() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.Errors) == 0 {
		return "No errors occurred during processing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Errors (%d total):\n", len(s.Errors))
	for i, err := range s.Errors {
		if i >= 10 {
			fmt.Fprintf(&b, "  ... and %d more errors\n", len(s.Errors)-10)
			break
		}
		fmt.Fprintf(&b, "  [%s] %s: %s - %s\n",
			err.Timestamp.Format("15:04:05"),
			err.Operation,
			err.FilePath,
			err.Error)
	}
	return b.String()
}

// FormatBytes returns a human-readable string for a byte count.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatMB returns bytes as megabytes (1024*1024) with two decimals, without a unit.
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.2f", float64(bytes)/(1024*1024))
}
