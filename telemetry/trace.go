package telemetry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/milk9111/platformkit/character"
	"github.com/milk9111/platformkit/sim"
)

// TraceRow is one character's state after a physics tick.
type TraceRow struct {
	Tick      int     `csv:"tick"`
	Character string  `csv:"character"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	VX        float64 `csv:"vx"`
	VY        float64 `csv:"vy"`
	OnGround  bool    `csv:"on_ground"`
	Steep     bool    `csv:"steep"`
	State     string  `csv:"state"`
	Flow      string  `csv:"flow"`
}

// TraceWriter is a sim.Observer that writes a TraceRow per character per
// physics tick as CSV.
type TraceWriter struct {
	out    *bufio.Writer
	closer io.Closer

	rows          []TraceRow
	headerWritten bool
	err           error
}

// NewTraceWriter writes to w. Close flushes but does not close w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{out: bufio.NewWriter(w)}
}

// CreateTrace creates the file at path, and its directory.
func CreateTrace(path string) (*TraceWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating trace directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace: %w", err)
	}
	t := NewTraceWriter(f)
	t.closer = f
	return t, nil
}

func Row(tick int, c *character.Character) TraceRow {
	pos := c.Body.Position()
	vel := c.Body.Velocity()
	return TraceRow{
		Tick:      tick,
		Character: c.Name,
		X:         pos.X,
		Y:         pos.Y,
		VX:        vel.X,
		VY:        vel.Y,
		OnGround:  c.Ground.OnGround(),
		Steep:     c.Ground.OnSteepSlope(),
		State:     c.State(),
		Flow:      c.Flow(),
	}
}

func (t *TraceWriter) Tick(s *sim.Simulation) {
	if t == nil || t.err != nil || len(s.Characters) == 0 {
		return
	}
	t.rows = t.rows[:0]
	for _, c := range s.Characters {
		t.rows = append(t.rows, Row(s.Ticks(), c))
	}

	if !t.headerWritten {
		if err := gocsv.Marshal(t.rows, t.out); err != nil {
			t.err = fmt.Errorf("writing trace: %w", err)
			return
		}
		t.headerWritten = true
		return
	}
	if err := gocsv.MarshalWithoutHeaders(t.rows, t.out); err != nil {
		t.err = fmt.Errorf("writing trace: %w", err)
	}
}

func (t *TraceWriter) Event(c *character.Character, evt character.Event) {}

// Err returns the first write error. Writing stops after it.
func (t *TraceWriter) Err() error {
	if t == nil {
		return nil
	}
	return t.err
}

// Close flushes buffered rows and closes the file opened by CreateTrace.
func (t *TraceWriter) Close() error {
	if t == nil {
		return nil
	}
	if err := t.out.Flush(); err != nil && t.err == nil {
		t.err = fmt.Errorf("flushing trace: %w", err)
	}
	if t.closer != nil {
		if err := t.closer.Close(); err != nil && t.err == nil {
			t.err = fmt.Errorf("closing trace: %w", err)
		}
		t.closer = nil
	}
	return t.err
}

// ReadTrace parses a trace written by TraceWriter.
func ReadTrace(r io.Reader) ([]TraceRow, error) {
	var rows []TraceRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return rows, nil
}
