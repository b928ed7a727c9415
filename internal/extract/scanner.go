package extract

import (
	"fmt"
	"strings"
)

// tableRows holds the parsed INSERT payload for one table: the column names
// (lowercased, empty when the statements carried no column list) and the raw
// textual values, one slice per inserted row.
type tableRows struct {
	cols []string
	rows [][]string
}

// get returns the value for a named column in row, or "" when the column is
// not present.
func (t *tableRows) get(row []string, name string) string {
	for i, c := range t.cols {
		if c == name && i < len(row) {
			return row[i]
		}
	}
	return ""
}

// scanInserts walks a SQL dump and collects the VALUES tuples of every
// INSERT targeting table. The dump syntax is SQL Server export style: GO
// batch separators, -- line comments, single-quoted strings with ''
// escapes, optional N'...' prefixes, NULL for absent values. Anything the
// scanner cannot read as a tuple is skipped and counted, never fatal.
// fallback names the columns when statements carry no explicit list.
func scanInserts(src, table string, fallback []string) (*tableRows, int, error) {
	s := &scanner{src: src}
	out := &tableRows{}
	skipped := 0

	for s.seekKeyword("insert") {
		target, cols, ok := s.insertHeader()
		if !ok {
			skipped++
			continue
		}
		if !strings.EqualFold(target, table) {
			continue
		}
		if out.cols == nil {
			out.cols = cols
		}
		for {
			values, ok := s.tuple()
			if !ok {
				skipped++
				break
			}
			out.rows = append(out.rows, values)
			if !s.consume(',') {
				break
			}
		}
	}

	if out.cols == nil {
		out.cols = fallback
	}
	if out.cols == nil && len(out.rows) > 0 {
		return nil, skipped, fmt.Errorf("insert statements for %q carry no column list", table)
	}
	return out, skipped, nil
}

// scanner is a single-pass cursor over dump text. It never backtracks past a
// statement boundary, so quoted text containing SQL keywords cannot confuse
// the keyword search.
type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

// seekKeyword advances to the character after the next occurrence of the
// keyword outside strings and comments. Returns false at end of input.
func (s *scanner) seekKeyword(word string) bool {
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == '\'':
			s.skipString()
		case c == '-' && strings.HasPrefix(s.src[s.pos:], "--"):
			s.skipLine()
		case isWordStart(c) && !s.midWord():
			if strings.EqualFold(s.word(), word) {
				return true
			}
		default:
			s.pos++
		}
	}
	return false
}

// insertHeader parses "[INTO] table [(col, ...)] VALUES" after the INSERT
// keyword, returning the bare table name and lowercased column list.
func (s *scanner) insertHeader() (string, []string, bool) {
	s.skipSpace()
	name := s.word()
	if strings.EqualFold(name, "into") {
		s.skipSpace()
		name = s.word()
	}
	if name == "" {
		return "", nil, false
	}
	// Keep only the last segment of a schema-qualified name, minus brackets.
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Trim(name, "[]")

	var cols []string
	s.skipSpace()
	if s.consume('(') {
		for {
			s.skipSpace()
			col := strings.Trim(s.word(), "[]")
			if col == "" {
				return "", nil, false
			}
			cols = append(cols, strings.ToLower(col))
			s.skipSpace()
			if s.consume(',') {
				continue
			}
			if s.consume(')') {
				break
			}
			return "", nil, false
		}
	}

	s.skipSpace()
	if !strings.EqualFold(s.word(), "values") {
		return "", nil, false
	}
	return name, cols, true
}

// tuple reads one parenthesized value list.
func (s *scanner) tuple() ([]string, bool) {
	s.skipSpace()
	if !s.consume('(') {
		return nil, false
	}
	var values []string
	for {
		s.skipSpace()
		v, ok := s.value()
		if !ok {
			return nil, false
		}
		values = append(values, v)
		s.skipSpace()
		if s.consume(',') {
			continue
		}
		if s.consume(')') {
			return values, true
		}
		return nil, false
	}
}

// value reads a single literal: quoted string, NULL, or a bare token.
func (s *scanner) value() (string, bool) {
	if s.eof() {
		return "", false
	}
	c := s.src[s.pos]
	// N'...' unicode string prefix
	if (c == 'N' || c == 'n') && s.pos+1 < len(s.src) && s.src[s.pos+1] == '\'' {
		s.pos++
		c = '\''
	}
	if c == '\'' {
		return s.quoted()
	}
	start := s.pos
	for !s.eof() {
		c := s.src[s.pos]
		if c == ',' || c == ')' || c == '\n' || c == '\r' {
			break
		}
		s.pos++
	}
	token := strings.TrimSpace(s.src[start:s.pos])
	if token == "" {
		return "", false
	}
	if strings.EqualFold(token, "null") {
		return "", true
	}
	return token, true
}

// quoted reads a single-quoted string, unescaping doubled quotes.
func (s *scanner) quoted() (string, bool) {
	s.pos++ // opening quote
	var b strings.Builder
	for !s.eof() {
		c := s.src[s.pos]
		if c == '\'' {
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '\'' {
				b.WriteByte('\'')
				s.pos += 2
				continue
			}
			s.pos++
			return b.String(), true
		}
		b.WriteByte(c)
		s.pos++
	}
	return "", false
}

func (s *scanner) skipString() {
	if _, ok := s.quoted(); !ok {
		s.pos = len(s.src)
	}
}

func (s *scanner) skipLine() {
	for !s.eof() && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

// consume advances past c if it is the next character.
func (s *scanner) consume(c byte) bool {
	s.skipSpace()
	if !s.eof() && s.src[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

// word reads an identifier-like token.
func (s *scanner) word() string {
	start := s.pos
	for !s.eof() && isWordChar(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// midWord reports whether the cursor sits inside an identifier rather than
// at its start.
func (s *scanner) midWord() bool {
	return s.pos > 0 && isWordChar(s.src[s.pos-1])
}

func isWordStart(c byte) bool {
	return c == '_' || c == '[' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isWordStart(c) || c == '.' || c == ']' || (c >= '0' && c <= '9')
}
