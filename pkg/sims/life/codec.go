package life

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lifegrid/pkg/core"
)

// LineError reports a line of a save file that could not be parsed.
type LineError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

var errMissingComma = errors.New("missing comma")

// Serialize writes one "x,y" line per live cell in row-major order.
func (l *Life) Serialize() []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var buf bytes.Buffer
	cells := l.cur.Cells()
	for y := 0; y < l.h; y++ {
		row := cells[y*l.w : (y+1)*l.w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			buf.WriteString(strconv.Itoa(x))
			buf.WriteByte(',')
			buf.WriteString(strconv.Itoa(y))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// Deserialize parses the save format produced by Serialize. Blank lines are
// ignored. Malformed lines are skipped; each one is reported as a *LineError
// in the returned error, which joins all of them. The coordinates that did
// parse are returned regardless.
func Deserialize(text []byte) ([]core.Coord, error) {
	var (
		coords []core.Coord
		errs   []error
	)
	rest := text
	for line := 1; len(rest) > 0; line++ {
		var raw []byte
		raw, rest, _ = bytes.Cut(rest, []byte{'\n'})
		s := strings.TrimSpace(string(raw))
		if s == "" {
			continue
		}
		c, err := parseCoord(s)
		if err != nil {
			errs = append(errs, &LineError{Line: line, Text: excerpt(raw), Err: err})
			continue
		}
		coords = append(coords, c)
	}
	return coords, errors.Join(errs...)
}

// maxExcerpt bounds the text kept in a LineError.
const maxExcerpt = 80

func excerpt(raw []byte) string {
	if len(raw) > maxExcerpt {
		return string(raw[:maxExcerpt]) + "..."
	}
	return string(raw)
}

func parseCoord(s string) (core.Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return core.Coord{}, errMissingComma
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return core.Coord{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return core.Coord{}, fmt.Errorf("y: %w", err)
	}
	return core.Coord{X: x, Y: y}, nil
}

// LineErrors flattens an error returned by Deserialize or Load into its
// per-line reports.
func LineErrors(err error) []*LineError {
	if err == nil {
		return nil
	}
	var out []*LineError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, LineErrors(e)...)
		}
		return out
	}
	var le *LineError
	if errors.As(err, &le) {
		out = append(out, le)
	}
	return out
}

// Load replaces the live cells with the coordinates parsed from text. Lines
// that fail to parse are skipped and reported in the returned error.
func (l *Life) Load(text []byte) error {
	coords, err := Deserialize(text)
	l.Initialize(coords)
	return err
}
