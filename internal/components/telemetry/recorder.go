package telemetry

import (
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelBroken
	LevelCount
)

type Report struct {
	Level  Level
	ID     string
	Params []any
	Count  int64
}

// Recorder is an API that keeps every report in memory so tests can assert
// on what a component reported.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(report Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.record(Report{Level: LevelBroken, ID: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.record(Report{Level: LevelWarning, ID: id, Params: params})
}

func (r *Recorder) ReportInfo(id string, params ...any) {
	r.record(Report{Level: LevelInfo, ID: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.record(Report{Level: LevelDebug, ID: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.record(Report{Level: LevelCount, ID: id, Count: count})
}

// Reports returns a copy of every report at the given level.
func (r *Recorder) Reports(level Level) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Level == level {
			out = append(out, report)
		}
	}
	return out
}

// Has reports whether a report at the given level has an id ending in the
// given suffix, scoped namespaces are ignored that way.
func (r *Recorder) Has(level Level, idSuffix string) bool {
	for _, report := range r.Reports(level) {
		if strings.HasSuffix(report.ID, idSuffix) {
			return true
		}
	}
	return false
}
