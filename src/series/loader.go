package series

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/IzmdI/rawstore-plots/src/locale"
	"github.com/IzmdI/rawstore-plots/src/logger"
)

var log = logger.Component("series")

// MaxLineBytes caps a single physical line; longer lines are dropped as malformed without
// being held in memory.
const MaxLineBytes = 1 << 20

const readBufferSize = 64 << 10

// Loader parses sample streams into records.
type Loader struct {
	Format locale.Formatter
	// OnWarning, when set, is called for every dropped line in addition to logging.
	OnWarning func(ParseWarning)
}

// NewLoader returns a loader labelling times with f.
func NewLoader(f locale.Formatter) *Loader {
	return &Loader{Format: f}
}

// Load fetches src and parses it. Fetch and read failures are *SourceUnavailableError; a
// stream without a single valid sample is *EmptyDatasetError.
func (l *Loader) Load(ctx context.Context, src Source) ([]Record, error) {
	defer log.TimeTrack(time.Now(), "load "+src.String())
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, &SourceUnavailableError{Source: src.String(), Err: err}
	}
	defer rc.Close()
	return l.Parse(rc, src.String())
}

// Parse reads newline-delimited samples from r. name is used in messages only.
// Blank lines are skipped silently; malformed lines are reported and skipped. Indexes are
// dense over surviving lines and follow input order.
func (l *Loader) Parse(r io.Reader, name string) ([]Record, error) {
	// UTF-8 with or without BOM; a UTF-16 BOM switches decoding.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := bufio.NewReaderSize(decoded, readBufferSize)

	var (
		records []Record
		lineNo  int
		seen    int
		dropped int
	)
	for {
		line, tooLong, rerr := readLine(reader)
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, &SourceUnavailableError{Source: name, Err: rerr}
		}
		if rerr != nil && len(line) == 0 && !tooLong {
			break
		}
		lineNo++
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 && !tooLong {
			continue
		}
		seen++
		if tooLong {
			dropped++
			l.warn(ParseWarning{Line: lineNo, Text: string(trimmed), Err: fmt.Errorf("line exceeds %d bytes", MaxLineBytes)})
			continue
		}
		s, perr := ParseSample(trimmed)
		if perr != nil {
			dropped++
			l.warn(ParseWarning{Line: lineNo, Text: string(trimmed), Err: perr})
			continue
		}
		records = append(records, l.record(s, len(records)))
	}
	if len(records) == 0 {
		return nil, &EmptyDatasetError{Source: name, Lines: seen, Dropped: dropped}
	}
	log.Infof("%s: %d records, %d dropped lines", name, len(records), dropped)
	return records, nil
}

// readLine returns the next line including its newline. A line longer than MaxLineBytes is
// consumed in buffer-sized chunks and discarded; only tooLong is reported for it.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		part, rerr := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(part) > MaxLineBytes {
				tooLong, line = true, nil
			} else {
				line = append(line, part...)
			}
		}
		if rerr != bufio.ErrBufferFull {
			return line, tooLong, rerr
		}
	}
}

func (l *Loader) record(s Sample, index int) Record {
	t := l.Format.UnixTime(s.Timestamp)
	return Record{
		Sample:    s,
		Index:     index,
		Time:      t,
		TimeLabel: l.Format.Time(t),
	}
}

func (l *Loader) warn(w ParseWarning) {
	log.Warnf("dropped %s", w)
	if l.OnWarning != nil {
		l.OnWarning(w)
	}
}
