// Package merge folds fio JSON result files into the newline-delimited summary the viewer
// reads. Each run appends only results newer than the summary's last line.
package merge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/IzmdI/rawstore-plots/src/logger"
)

var log = logger.Component("merge")

// DefaultOutputName is the summary file name without extension.
const DefaultOutputName = "fio_summary"

// Entry is one summary line. Field order is the on-disk key order.
type Entry struct {
	Timestamp      int64   `json:"timestamp"`
	Time           string  `json:"time"`
	Commit         string  `json:"commit"`
	ReadIOPS       float64 `json:"read_iops"`
	ReadLatencyNs  float64 `json:"read_latency_ns"`
	WriteIOPS      float64 `json:"write_iops"`
	WriteLatencyNs float64 `json:"write_latency_ns"`
}

// Result summarises one merge run.
type Result struct {
	Output    string
	Watermark int64 // timestamp of the summary's last line before the run, -1 if none
	Appended  int
	Skipped   int // not newer than the watermark
	Failed    int // unreadable or not fio results
}

// fioResult is the subset of fio --output-format=json we need.
type fioResult struct {
	Timestamp *int64 `json:"timestamp"`
	Time      string `json:"time"`
	Jobs      []struct {
		Read  fioDirection `json:"read"`
		Write fioDirection `json:"write"`
	} `json:"jobs"`
}

type fioDirection struct {
	IOPSMean float64 `json:"iops_mean"`
	LatNs    struct {
		Mean float64 `json:"mean"`
	} `json:"lat_ns"`
}

var errNoJobs = errors.New("no jobs in fio result")

// Merge appends every fio result in dir newer than the summary watermark to
// dir/<outputName>.jsonl, sorted by timestamp.
func Merge(dir, outputName string) (Result, error) {
	defer log.TimeTrack(time.Now(), "merge "+dir)
	if outputName == "" {
		outputName = DefaultOutputName
	}
	res := Result{Output: filepath.Join(dir, outputName+".jsonl"), Watermark: -1}

	wm, err := watermark(res.Output)
	if err != nil {
		return res, err
	}
	res.Watermark = wm

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return res, fmt.Errorf("list %s: %w", dir, err)
	}
	var entries []Entry
	for _, path := range files {
		e, err := readResult(path)
		if err != nil {
			res.Failed++
			log.Warnf("skipping %s: %v", filepath.Base(path), err)
			continue
		}
		if e.Timestamp <= wm {
			res.Skipped++
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		log.Infof("%s: nothing new (%d older, %d failed)", res.Output, res.Skipped, res.Failed)
		return res, nil
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp < entries[j].Timestamp
		}
		return entries[i].Commit < entries[j].Commit
	})

	f, err := os.OpenFile(res.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return res, fmt.Errorf("open %s: %w", res.Output, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return res, fmt.Errorf("write %s: %w", res.Output, err)
		}
		res.Appended++
	}
	log.Infof("%s: appended %d (%d older, %d failed)", res.Output, res.Appended, res.Skipped, res.Failed)
	return res, nil
}

func readResult(path string) (Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var fr fioResult
	if err := json.Unmarshal(raw, &fr); err != nil {
		return Entry{}, err
	}
	if fr.Timestamp == nil {
		return Entry{}, errors.New("missing timestamp")
	}
	if len(fr.Jobs) == 0 {
		return Entry{}, errNoJobs
	}
	job := fr.Jobs[0]
	return Entry{
		Timestamp:      *fr.Timestamp,
		Time:           fr.Time,
		Commit:         strings.TrimSuffix(filepath.Base(path), ".json"),
		ReadIOPS:       job.Read.IOPSMean,
		ReadLatencyNs:  job.Read.LatNs.Mean,
		WriteIOPS:      job.Write.IOPSMean,
		WriteLatencyNs: job.Write.LatNs.Mean,
	}, nil
}

// watermark returns the timestamp of the last non-blank line of path, or -1 when the file
// is missing or empty.
func watermark(path string) (int64, error) {
	line, err := lastLine(path)
	if errors.Is(err, os.ErrNotExist) {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("read %s: %w", path, err)
	}
	if line == "" {
		return -1, nil
	}
	var last struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(line), &last); err != nil {
		return -1, fmt.Errorf("parse last line of %s: %w", path, err)
	}
	if last.Timestamp == nil {
		return -1, nil
	}
	return *last.Timestamp, nil
}

const tailChunk = 4096

// lastLine reads backwards from the end of path until it holds a complete non-blank line.
func lastLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := st.Size()
	var tail []byte
	for off := size; off > 0; {
		n := int64(tailChunk)
		if off < n {
			n = off
		}
		off -= n
		buf := make([]byte, n)
		if _, err := f.ReadAt(buf, off); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		tail = append(buf, tail...)
		trimmed := strings.TrimRight(string(tail), " \t\r\n")
		if i := strings.LastIndexByte(trimmed, '\n'); i >= 0 {
			return strings.TrimSpace(trimmed[i+1:]), nil
		}
	}
	return strings.TrimSpace(string(tail)), nil
}
