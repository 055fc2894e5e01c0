package unblock

import "fmt"

// Stats counts the per-file outcomes of a run. For every classified file
// FilesProcessed equals the sum of FilesUnblocked, FilesNoMarker and
// FilesFailed. Entries that fail during directory enumeration are the one
// exception, they count toward FilesFailed without ever being classified.
type Stats struct {
	FilesProcessed   uint `json:"files_processed"`
	FilesUnblocked   uint `json:"files_unblocked"`
	FilesNoMarker    uint `json:"files_no_marker"`
	FilesFailed      uint `json:"files_failed"`
	PermissionErrors uint `json:"permission_errors"`
}

// Record counts the result of one classified file.
func (s *Stats) Record(outcome Outcome, err error) {
	s.FilesProcessed++

	if err != nil {
		s.FilesFailed++
		if outcome == OutcomePermissionDenied {
			s.PermissionErrors++
		}
		return
	}

	switch outcome {
	case OutcomeUnblocked:
		s.FilesUnblocked++
	case OutcomeNoMarker, OutcomeSkipped:
		s.FilesNoMarker++
	}
}

// Add merges the counters of other into s.
func (s *Stats) Add(other Stats) {
	s.FilesProcessed += other.FilesProcessed
	s.FilesUnblocked += other.FilesUnblocked
	s.FilesNoMarker += other.FilesNoMarker
	s.FilesFailed += other.FilesFailed
	s.PermissionErrors += other.PermissionErrors
}

// Summary returns the fixed one line report that closes every directory
// run.
func (s *Stats) Summary() string {
	return fmt.Sprintf("Processed %d files: %d unblocked, %d had no ADS, %d failed (%d permission errors)",
		s.FilesProcessed, s.FilesUnblocked, s.FilesNoMarker, s.FilesFailed, s.PermissionErrors)
}
