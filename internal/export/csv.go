package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/dentalog/dentalog/internal/i18n"
	"github.com/dentalog/dentalog/internal/records"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// WriteRecordsCSV streams the record set as a CSV document: header row first,
// then one row per record in the order given. Cells stay machine-readable so
// the file can round-trip through a spreadsheet.
func WriteRecordsCSV(w io.Writer, recs []records.Record) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow(Header()); err != nil {
		return err
	}
	for _, rec := range recs {
		if err := streamer.writeRow(RawRow(rec)); err != nil {
			return err
		}
	}
	return streamer.Close()
}

// CSVFilename names the download after the calendar date of the export.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("clinic_records_%s.csv", i18n.ToISODate(now))
}
