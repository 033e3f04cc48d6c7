package series

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IzmdI/rawstore-plots/src/locale"
)

const validLine = `{"timestamp":1000,"read_iops":100,"write_iops":50,"read_latency_ns":200,"write_latency_ns":400}`

func newTestLoader() *Loader { return NewLoader(locale.New(time.UTC)) }

func TestParse_CountsOnlyValidLines(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    int
		dropped int
	}{
		{"single", validLine + "\n", 1, 0},
		{"no trailing newline", validLine, 1, 0},
		{"blank lines ignored", "\n\n" + validLine + "\n   \n" + validLine + "\n\n", 2, 0},
		{"malformed json", validLine + "\n{not json}\n" + validLine + "\n", 2, 1},
		{"missing field", validLine + "\n" + `{"timestamp":5,"read_iops":1,"write_iops":2,"read_latency_ns":3}` + "\n", 1, 1},
		{"null field", `{"timestamp":5,"read_iops":null,"write_iops":2,"read_latency_ns":3,"write_latency_ns":4}` + "\n" + validLine, 1, 1},
		{"string value", `{"timestamp":5,"read_iops":"1","write_iops":2,"read_latency_ns":3,"write_latency_ns":4}` + "\n" + validLine, 1, 1},
		{"negative value", `{"timestamp":5,"read_iops":-1,"write_iops":2,"read_latency_ns":3,"write_latency_ns":4}` + "\n" + validLine, 1, 1},
		{"array line", "[1,2,3]\n" + validLine, 1, 1},
		{"crlf", validLine + "\r\n" + validLine + "\r\n", 2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLoader()
			var warnings []ParseWarning
			l.OnWarning = func(w ParseWarning) { warnings = append(warnings, w) }
			recs, err := l.Parse(strings.NewReader(tc.input), "test")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(recs) != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, len(recs))
			}
			if len(warnings) != tc.dropped {
				t.Fatalf("expected %d warnings, got %d (%v)", tc.dropped, len(warnings), warnings)
			}
			for i, r := range recs {
				if r.Index != i {
					t.Fatalf("record %d has index %d", i, r.Index)
				}
			}
		})
	}
}

func TestParse_MalformedLineDoesNotAdvanceIndex(t *testing.T) {
	input := `{"timestamp":1,"read_iops":1,"write_iops":1,"read_latency_ns":1,"write_latency_ns":1}` + "\n" +
		"garbage\n" +
		`{"timestamp":2,"read_iops":2,"write_iops":2,"read_latency_ns":2,"write_latency_ns":2}` + "\n"
	recs, err := newTestLoader().Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[1].Index != 1 || recs[1].Timestamp != 2 {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestParse_PreservesFileOrder(t *testing.T) {
	input := strings.Replace(validLine, "1000", "3000", 1) + "\n" + validLine + "\n"
	recs, err := newTestLoader().Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].Timestamp != 3000 || recs[1].Timestamp != 1000 {
		t.Fatalf("records were re-sorted: %d, %d", recs[0].Timestamp, recs[1].Timestamp)
	}
}

func TestParse_EmptyDataset(t *testing.T) {
	for _, input := range []string{"", "\n\n  \n", "x\n{}\n[1]\n"} {
		recs, err := newTestLoader().Parse(strings.NewReader(input), "test")
		if recs != nil {
			t.Fatalf("expected no records for %q, got %v", input, recs)
		}
		if !errors.Is(err, ErrEmptyDataset) {
			t.Fatalf("expected ErrEmptyDataset for %q, got %v", input, err)
		}
		var ee *EmptyDatasetError
		if !errors.As(err, &ee) {
			t.Fatalf("expected *EmptyDatasetError, got %T", err)
		}
	}
}

func TestParse_EqualTimestampsEqualLabels(t *testing.T) {
	input := validLine + "\n" + strings.Replace(validLine, `"read_iops":100`, `"read_iops":7`, 1) + "\n"
	recs, err := newTestLoader().Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].TimeLabel != recs[1].TimeLabel {
		t.Fatalf("labels differ: %q vs %q", recs[0].TimeLabel, recs[1].TimeLabel)
	}
	if recs[0].TimeLabel != "01.01.1970, 00:16:40" {
		t.Fatalf("unexpected label %q", recs[0].TimeLabel)
	}
	if !recs[0].Time.Equal(time.Unix(1000, 0)) {
		t.Fatalf("unexpected time %v", recs[0].Time)
	}
}

func TestParse_UTF8BOM(t *testing.T) {
	input := "\ufeff" + validLine + "\n"
	recs, err := newTestLoader().Parse(strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
}

func TestParse_CommitKept(t *testing.T) {
	line := `{"timestamp":10,"time":"x","commit":"abc123","read_iops":1,"write_iops":2,"read_latency_ns":3,"write_latency_ns":4}`
	recs, err := newTestLoader().Parse(strings.NewReader(line), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].Commit != "abc123" {
		t.Fatalf("commit not kept: %+v", recs[0])
	}
}

func TestLoad_EndToEndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fio_summary.jsonl")
	if err := os.WriteFile(path, []byte(validLine+"\n{\"timestamp\": oops}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	recs, err := newTestLoader().Load(context.Background(), FileSource{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].Index != 0 {
		t.Fatalf("expected one record with index 0, got %+v", recs)
	}
	r := recs[0]
	if r.ReadIOPS != 100 || r.WriteIOPS != 50 || r.ReadLatencyNs != 200 || r.WriteLatencyNs != 400 {
		t.Fatalf("unexpected values: %+v", r.Sample)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := newTestLoader().Load(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "nope.jsonl")})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestLoad_HTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/fio_summary.jsonl" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(validLine + "\n" + validLine + "\n"))
	}))
	defer srv.Close()

	l := newTestLoader()
	recs, err := l.Load(context.Background(), NewSource(srv.URL+"/data/fio_summary.jsonl", srv.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}

	_, err = l.Load(context.Background(), NewSource(srv.URL+"/missing", srv.Client()))
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable for 404, got %v", err)
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestLoader().Load(ctx, FileSource{Path: "whatever"})
	if !errors.Is(err, ErrSourceUnavailable) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled unavailable error, got %v", err)
	}
}

func TestNewSource(t *testing.T) {
	if _, ok := NewSource("https://example.org/a.jsonl", nil).(HTTPSource); !ok {
		t.Fatalf("expected HTTPSource for https URL")
	}
	if _, ok := NewSource(" HTTP://example.org/a.jsonl", nil).(HTTPSource); !ok {
		t.Fatalf("expected HTTPSource for upper-case scheme")
	}
	fs, ok := NewSource("data/fio_summary.jsonl", nil).(FileSource)
	if !ok || fs.Path != "data/fio_summary.jsonl" {
		t.Fatalf("expected FileSource, got %#v", fs)
	}
}

func TestParseWarningTruncates(t *testing.T) {
	w := ParseWarning{Line: 3, Text: strings.Repeat("a", 500), Err: errors.New("bad")}
	if s := w.String(); len(s) > 200 || !strings.Contains(s, "line 3") {
		t.Fatalf("unexpected warning text %q", s)
	}
}

func TestParse_OversizedLineDropped(t *testing.T) {
	huge := strings.Repeat("x", MaxLineBytes+10)
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{"middle", validLine + "\n" + huge + "\n" + validLine + "\n", 2},
		{"trailing without newline", validLine + "\n" + huge, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var warnings []ParseWarning
			l := newTestLoader()
			l.OnWarning = func(w ParseWarning) { warnings = append(warnings, w) }
			recs, err := l.Parse(strings.NewReader(tc.input), "test")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(recs) != tc.want || recs[len(recs)-1].Index != tc.want-1 {
				t.Fatalf("expected %d records, got %+v", tc.want, recs)
			}
			if len(warnings) != 1 || warnings[0].Line != 2 || !strings.Contains(warnings[0].Err.Error(), "exceeds") {
				t.Fatalf("unexpected warnings: %+v", warnings)
			}
		})
	}
}

func TestReadLine_DiscardsOversizedLine(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader(strings.Repeat("y", 3*MaxLineBytes)+"\nnext\n"), 4096)
	line, tooLong, err := readLine(r)
	if err != nil || !tooLong || line != nil {
		t.Fatalf("expected a discarded line, got %d bytes, tooLong=%v, err=%v", len(line), tooLong, err)
	}
	line, tooLong, err = readLine(r)
	if err != nil || tooLong || string(line) != "next\n" {
		t.Fatalf("next line not intact: %q %v %v", line, tooLong, err)
	}
}
