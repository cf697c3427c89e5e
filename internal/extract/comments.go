package extract

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single physical line read by StripComments.
const maxLineSize = 1024 * 1024

// StripComments reads a whole file and returns its logical lines with C and
// C++ comments removed. Lines that are empty or whitespace only after stripping
// are dropped; the remaining lines keep their original relative order.
func StripComments(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	s := &commentStripper{}
	for scanner.Scan() {
		s.feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s.lines, nil
}

type commentStripper struct {
	inBlock bool
	lines   []string
}

func (s *commentStripper) feed(raw string) {
	line := strings.TrimSuffix(raw, "\r")

	if s.inBlock {
		end := strings.Index(line, "*/")
		if end < 0 {
			return
		}
		s.inBlock = false
		line = line[end+2:]
	}

	line, s.inBlock = stripLine(line)
	if strings.TrimSpace(line) == "" {
		return
	}
	s.lines = append(s.lines, line)
}

// stripLine removes every comment that starts on line. "//" is honoured before
// "/*". When a block comment is left open the whole line is consumed and the
// second result is true; processing resumes after the closing "*/".
func stripLine(line string) (string, bool) {
	for {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		start := strings.Index(line, "/*")
		if start < 0 {
			return line, false
		}
		end := strings.Index(line[start+2:], "*/")
		if end < 0 {
			return "", true
		}
		line = line[:start] + line[start+2+end+2:]
	}
}
