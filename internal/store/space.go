package store

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/daslerpc/mech-checker/internal/grid"
	"github.com/daslerpc/mech-checker/internal/statespace"
	"github.com/daslerpc/mech-checker/pkg/types"
)

// WriteSpace atomically writes every state of space to path, level by level.
func WriteSpace(path string, m *grid.Model, space types.Space) error {
	return WriteSpaces(m, SpaceFile{Path: path, Space: space})
}

// SpaceFile pairs a space with its destination path.
type SpaceFile struct {
	Path  string
	Space types.Space
}

// WriteSpaces writes every file to a temp file first and renames them into
// place only once all are complete, so a failure leaves none of the final
// paths touched. A failed rename removes the files already renamed.
func WriteSpaces(m *grid.Model, files ...SpaceFile) error {
	staged := make([]*atomicFile, 0, len(files))
	discard := func() {
		for _, af := range staged {
			os.Remove(af.tmp.Name())
		}
	}
	for _, f := range files {
		af, err := createAtomic(f.Path)
		if err != nil {
			discard()
			return err
		}
		if err := writeSpace(af, m, f.Space); err != nil {
			af.abort()
			discard()
			return err
		}
		if err := af.seal(); err != nil {
			discard()
			return err
		}
		staged = append(staged, af)
	}
	for i, af := range staged {
		if err := af.publish(); err != nil {
			for _, done := range staged[:i] {
				os.Remove(done.path)
			}
			for _, rest := range staged[i+1:] {
				os.Remove(rest.tmp.Name())
			}
			return err
		}
	}
	return nil
}

func writeSpace(af *atomicFile, m *grid.Model, space types.Space) error {
	for t := 0; t <= space.Horizon(); t++ {
		for _, s := range space.NeighborsAt(t) {
			if err := af.writeLine(FormatState(m, s)); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadSpace reads a space file written under m. The file name must encode
// m's parameters. Blank lines are skipped; the first bad record aborts the
// load with its line number.
func LoadSpace(path string, m *grid.Model) (*statespace.Space, error) {
	if _, err := VerifyName(path, m); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	space := statespace.NewSpace(m.Horizon())
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, err := ParseState(m, line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		space.Add(s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return space, nil
}
