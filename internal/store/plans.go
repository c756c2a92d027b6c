package store

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// PlanWriter streams plans into a file that becomes visible only on Commit.
// It is not safe for concurrent use; the search serializes sink calls.
type PlanWriter struct {
	af *atomicFile
	m  *grid.Model
	n  int
}

// CreatePlans opens a plan writer for path.
func CreatePlans(path string, m *grid.Model) (*PlanWriter, error) {
	af, err := createAtomic(path)
	if err != nil {
		return nil, err
	}
	return &PlanWriter{af: af, m: m}, nil
}

// Write appends one plan. Its signature matches types.PlanSink.
func (w *PlanWriter) Write(p types.Plan) error {
	if w.n > 0 {
		if err := w.af.writeLine(""); err != nil {
			return err
		}
	}
	for _, s := range p {
		if err := w.af.writeLine(FormatState(w.m, s)); err != nil {
			return err
		}
	}
	w.n++
	return nil
}

// Count returns the number of plans written so far.
func (w *PlanWriter) Count() int {
	return w.n
}

// Commit publishes the file.
func (w *PlanWriter) Commit() error {
	return w.af.commit()
}

// Abort discards everything written.
func (w *PlanWriter) Abort() error {
	return w.af.abort()
}

// ReadPlans streams the plans in path to fn, numbering them from 1. The
// file name must encode m's parameters.
func ReadPlans(path string, m *grid.Model, fn func(n int, p types.Plan) error) error {
	if _, err := VerifyName(path, m); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var (
		cur    types.Plan
		n      int
		lineNo int
	)
	flush := func() error {
		if len(cur) == 0 {
			return nil
		}
		n++
		err := fn(n, cur)
		cur = nil
		return err
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		s, err := ParseState(m, line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		cur = append(cur, s)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning %s: %w", path, err)
	}
	return flush()
}

// LoadPlans reads every plan in path.
func LoadPlans(path string, m *grid.Model) ([]types.Plan, error) {
	var out []types.Plan
	err := ReadPlans(path, m, func(_ int, p types.Plan) error {
		out = append(out, p)
		return nil
	})
	return out, err
}
