package unblock

import (
	"testing"

	"github.com/unblocker/unblocker/internal/errors"
)

func TestStatsSummary(t *testing.T) {
	tests := []struct {
		stats Stats
		want  string
	}{
		{
			stats: Stats{},
			want:  "Processed 0 files: 0 unblocked, 0 had no ADS, 0 failed (0 permission errors)",
		},
		{
			stats: Stats{FilesProcessed: 2, FilesNoMarker: 2},
			want:  "Processed 2 files: 0 unblocked, 2 had no ADS, 0 failed (0 permission errors)",
		},
		{
			stats: Stats{
				FilesProcessed:   10,
				FilesUnblocked:   5,
				FilesNoMarker:    3,
				FilesFailed:      2,
				PermissionErrors: 1,
			},
			want: "Processed 10 files: 5 unblocked, 3 had no ADS, 2 failed (1 permission errors)",
		},
	}

	for _, test := range tests {
		if got := test.stats.Summary(); got != test.want {
			t.Errorf("wrong summary:\nwant %q\ngot  %q", test.want, got)
		}
	}
}

func TestStatsRecord(t *testing.T) {
	var stats Stats
	failure := errors.New("broken")

	stats.Record(OutcomeUnblocked, nil)
	stats.Record(OutcomeNoMarker, nil)
	stats.Record(OutcomeSkipped, nil)
	stats.Record(OutcomePermissionDenied, failure)
	stats.Record(OutcomeFailed, failure)
	// a log write failure turns a successful removal into a failed file
	stats.Record(OutcomeUnblocked, failure)

	want := Stats{
		FilesProcessed:   6,
		FilesUnblocked:   1,
		FilesNoMarker:    2,
		FilesFailed:      3,
		PermissionErrors: 1,
	}
	if stats != want {
		t.Errorf("wrong counters: want %+v, got %+v", want, stats)
	}

	if stats.FilesProcessed != stats.FilesUnblocked+stats.FilesNoMarker+stats.FilesFailed {
		t.Errorf("counters out of balance: %+v", stats)
	}
}

func TestStatsAdd(t *testing.T) {
	total := Stats{FilesProcessed: 1, FilesUnblocked: 1}
	total.Add(Stats{
		FilesProcessed:   4,
		FilesNoMarker:    2,
		FilesFailed:      2,
		PermissionErrors: 1,
	})

	want := Stats{
		FilesProcessed:   5,
		FilesUnblocked:   1,
		FilesNoMarker:    2,
		FilesFailed:      2,
		PermissionErrors: 1,
	}
	if total != want {
		t.Errorf("wrong counters: want %+v, got %+v", want, total)
	}
}
