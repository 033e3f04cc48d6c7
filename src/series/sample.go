// Package series turns a newline-delimited stream of fio benchmark samples into the ordered,
// immutable record sequence the charts are drawn from.
package series

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Sample is one raw benchmark observation as written by the merger.
type Sample struct {
	Timestamp      int64   `json:"timestamp"`
	ReadIOPS       float64 `json:"read_iops"`
	WriteIOPS      float64 `json:"write_iops"`
	ReadLatencyNs  float64 `json:"read_latency_ns"`
	WriteLatencyNs float64 `json:"write_latency_ns"`
	// Commit is optional; merged files carry the source result name here.
	Commit string `json:"commit,omitempty"`
}

// Record is a Sample enriched with its position and display fields. Records are values and
// are never mutated after the loader returns them.
type Record struct {
	Sample
	Index     int
	Time      time.Time
	TimeLabel string
}

// wireSample uses pointers so that absent keys and nulls are distinguishable from zeros.
type wireSample struct {
	Timestamp      *int64   `json:"timestamp"`
	ReadIOPS       *float64 `json:"read_iops"`
	WriteIOPS      *float64 `json:"write_iops"`
	ReadLatencyNs  *float64 `json:"read_latency_ns"`
	WriteLatencyNs *float64 `json:"write_latency_ns"`
	Commit         string   `json:"commit"`
}

var errNotObject = errors.New("not a JSON object")

// ParseSample decodes one line. All five fields must be present, numeric and non-negative;
// timestamp must be an integer.
func ParseSample(line []byte) (Sample, error) {
	var w wireSample
	if err := json.Unmarshal(line, &w); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) && ute.Field == "" {
			return Sample{}, errNotObject
		}
		return Sample{}, err
	}
	if w.Timestamp == nil {
		return Sample{}, missing("timestamp")
	}
	fields := []struct {
		name string
		v    *float64
	}{
		{"read_iops", w.ReadIOPS},
		{"write_iops", w.WriteIOPS},
		{"read_latency_ns", w.ReadLatencyNs},
		{"write_latency_ns", w.WriteLatencyNs},
	}
	for _, f := range fields {
		if f.v == nil {
			return Sample{}, missing(f.name)
		}
		if *f.v < 0 || math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return Sample{}, fmt.Errorf("field %s: negative or non-finite value %v", f.name, *f.v)
		}
	}
	return Sample{
		Timestamp:      *w.Timestamp,
		ReadIOPS:       *w.ReadIOPS,
		WriteIOPS:      *w.WriteIOPS,
		ReadLatencyNs:  *w.ReadLatencyNs,
		WriteLatencyNs: *w.WriteLatencyNs,
		Commit:         w.Commit,
	}, nil
}

func missing(name string) error { return fmt.Errorf("field %s missing or null", name) }
