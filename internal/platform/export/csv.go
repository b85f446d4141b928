package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// Streamer writes CSV rows through a buffered writer, flushing every few hundred rows.
type Streamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	printer      *message.Printer
	flushEvery   int
	pendingLines int
}

func NewStreamer(w io.Writer) *Streamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &Streamer{
		buf:        buf,
		csv:        writer,
		printer:    message.NewPrinter(language.English),
		flushEvery: csvFlushEvery,
	}
}

// Comment writes a "# ..." metadata line. Readers must set csv.Reader.Comment = '#'.
func (s *Streamer) Comment(format string, args ...any) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	line := "# " + s.printer.Sprintf(format, args...)
	line = strings.TrimRight(line, "\r\n") + "\r\n"
	_, err := s.buf.WriteString(line)
	return err
}

func (s *Streamer) Row(row ...string) error {
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

func (s *Streamer) Flush() error {
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

func (s *Streamer) Close() error {
	return s.Flush()
}

// Amount renders a ledger amount with two decimals and no grouping so it stays machine readable.
func Amount(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// Display renders an amount with thousands separators for comment lines.
func (s *Streamer) Display(v decimal.Decimal) string {
	whole := v.Truncate(0)
	frac := v.Sub(whole).Abs().StringFixed(2)[1:]
	sign := ""
	if v.IsNegative() && whole.IsZero() {
		sign = "-"
	}
	return sign + s.printer.Sprintf("%d", whole.IntPart()) + frac
}
