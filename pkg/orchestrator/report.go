package orchestrator

import (
	"sort"
	"sync/atomic"

	"github.com/gdretool/gdre-go/pkg/exporters"
)

// ImportExporterReport is the final aggregate of one export run (ported
// from ImportExporterReport's success/failed/not_converted/
// unsupported_types split, utility/import_exporter.h).
type ImportExporterReport struct {
	Reports         []exporters.Report
	BySection       map[string]int
	UnsupportedType map[string]int
	Cancelled       bool
	ErrorOverflow   int
}

// newImportExporterReport returns an empty report.
func newImportExporterReport() *ImportExporterReport {
	return &ImportExporterReport{
		BySection:       map[string]int{},
		UnsupportedType: map[string]int{},
	}
}

// reportSink collects per-task reports and recoverable error messages
// through append-only channels, drained once after the run completes
// (spec.md §5: "the orchestrator's report accumulators are append-only
// channels; a single drain runs after the group completes").
type reportSink struct {
	reports  chan exporters.Report
	errs     chan string
	overflow atomic.Int64
}

// errorChannelCap is the error-collection channel's overflow threshold
// (spec.md §5: "buffers up to 1024 messages; overflow drops with a
// counter").
const errorChannelCap = 1024

func newReportSink(capacity int) *reportSink {
	return &reportSink{
		reports: make(chan exporters.Report, capacity),
		errs:    make(chan string, errorChannelCap),
	}
}

func (s *reportSink) addReport(r exporters.Report) {
	s.reports <- r
	if r.Err != nil {
		s.addError(r.Source + ": " + r.Err.Error())
	}
}

func (s *reportSink) addError(msg string) {
	select {
	case s.errs <- msg:
	default:
		s.overflow.Add(1)
	}
}

// drain closes both channels and returns their contents sorted
// deterministically by source path (spec.md §5: "aggregate results are
// sorted deterministically by source path before emission").
func (s *reportSink) drain() ([]exporters.Report, []string, int) {
	close(s.reports)
	close(s.errs)

	reports := make([]exporters.Report, 0, len(s.reports))
	for r := range s.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Source < reports[j].Source })

	var errs []string
	for e := range s.errs {
		errs = append(errs, e)
	}
	sort.Strings(errs)

	return reports, errs, int(s.overflow.Load())
}
