package extract

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// Macro markers recognized in implementation files.
const (
	ImplementMarker      = "IMPLEMENT_"
	SlotTableBeginMarker = "BEGIN_SLOTTABLE("
	SlotTableEndMarker   = "END_SLOTTABLE("
	SlotMapBeginMarker   = "BEGIN_SLOT_MAP("
	SlotMapEndMarker     = "END_SLOT_MAP("
)

const (
	namespaceKeyword = "namespace"
	usingKeyword     = "using"
	classKeyword     = "class"
)

var accessKeywords = []string{"public", "private", "protected"}

// The rules below are substring heuristics over single comment-stripped lines.
// They do not tokenize: "class" matches inside identifiers such as "subclass",
// and that is the expected behaviour.

// NamespaceOpen reports whether line opens a namespace scope and returns its
// name: the text between "namespace" and "{" (or end of line) with all
// whitespace removed. using directives and lines that also close a brace never
// open a scope. An anonymous namespace yields an empty name.
func NamespaceOpen(line string) (string, bool) {
	idx := strings.Index(line, namespaceKeyword)
	if idx < 0 || IsUsingDirective(line) || strings.Contains(line, "}") {
		return "", false
	}
	rest := line[idx+len(namespaceKeyword):]
	if brace := strings.Index(rest, "{"); brace >= 0 {
		rest = rest[:brace]
	}
	return removeWhitespace(rest), true
}

// IsUsingDirective reports whether line is a using declaration or directive.
// Like the "class" rule this is a plain substring match, so identifiers that
// contain "using" (namespace causing_issues {) also count, and such a line
// never opens a namespace.
func IsUsingDirective(line string) bool {
	return strings.Contains(line, usingKeyword)
}

// IsClassDefinition reports whether line starts a class definition: it
// mentions "class" and has no ";" (which would make it a forward declaration).
func IsClassDefinition(line string) bool {
	return strings.Contains(line, classKeyword) && !strings.Contains(line, ";")
}

// IsDerivedClass reports whether a class definition line names a base.
func IsDerivedClass(line string) bool {
	return IsClassDefinition(line) && strings.Contains(line, ":")
}

// ClassName extracts the unqualified declared name from a class definition
// line. For derived classes it is the text before the first ":"; otherwise the
// text from "class" up to "{" or end of line. The class keyword and all
// whitespace are removed.
func ClassName(line string) string {
	var s string
	if colon := strings.Index(line, ":"); colon >= 0 {
		s = line[:colon]
	} else {
		start := strings.Index(line, classKeyword)
		if start < 0 {
			start = 0
		}
		end := strings.Index(line, "{")
		if end < start {
			end = len(line)
		}
		s = line[start:end]
	}
	return removeWhitespace(strings.ReplaceAll(s, classKeyword, ""))
}

// BaseSpecifier extracts the base class written after ":" on a derived class
// line, with access keywords and whitespace removed. It returns "" when the
// line has no ":".
func BaseSpecifier(line string) string {
	s := line
	for _, kw := range accessKeywords {
		s = strings.ReplaceAll(s, kw, "")
	}
	colon := strings.Index(s, ":")
	if colon < 0 {
		return ""
	}
	end := strings.Index(s, "{")
	if end < colon+1 {
		end = len(s)
	}
	return removeWhitespace(s[colon+1 : end])
}

// MacroArgument returns the text between the first "(" and the following ")"
// on line, trimmed. A missing ")" takes the rest of the line.
func MacroArgument(line string) (string, bool) {
	open := strings.Index(line, "(")
	if open < 0 {
		return "", false
	}
	rest := line[open+1:]
	if closing := strings.Index(rest, ")"); closing >= 0 {
		rest = rest[:closing]
	}
	return strings.TrimSpace(rest), true
}

// ImplementMacro parses an IMPLEMENT_* invocation such as
// IMPLEMENT_SUBCLASS(Gauge, "Gauge"). class is the first comma-delimited
// argument, form the first double-quoted string.
func ImplementMacro(line string) (class, form string, ok bool) {
	if !strings.Contains(line, ImplementMarker) {
		return "", "", false
	}
	open := strings.Index(line, "(")
	comma := strings.Index(line, ",")
	if open < 0 || comma <= open {
		return "", "", false
	}
	quoted := QuotedStrings(line)
	if len(quoted) == 0 {
		return "", "", false
	}
	class = strings.TrimSpace(line[open+1 : comma])
	if class == "" {
		return "", "", false
	}
	return class, quoted[0], true
}

// QuotedStrings returns the contents of every complete "..." pair on line,
// left to right. An unpaired trailing quote is ignored.
func QuotedStrings(line string) []string {
	var out []string
	pos := 0
	for pos < len(line) {
		start := strings.IndexByte(line[pos:], '"')
		if start < 0 {
			break
		}
		start += pos
		end := strings.IndexByte(line[start+1:], '"')
		if end < 0 {
			break
		}
		end += start + 1
		out = append(out, line[start+1:end])
		pos = end + 1
	}
	return out
}

// SlotMapEntry parses a slot map entry such as ON_SLOT(2, setSlotColor, Basic::Color).
// Whitespace is ignored. index is the first argument (1-based position in the
// owning slot table) and typeName the third. Entries with a non-positive or
// non-numeric index are rejected.
func SlotMapEntry(line string) (index int, typeName string, ok bool) {
	s := removeWhitespace(line)
	open := strings.Index(s, "(")
	if open < 0 || !strings.Contains(s[open+1:], ")") {
		return 0, "", false
	}
	first := indexFrom(s, ",", open+1)
	if first < 0 {
		return 0, "", false
	}
	index, err := strconv.Atoi(s[open+1 : first])
	if err != nil || index <= 0 {
		return 0, "", false
	}
	second := indexFrom(s, ",", first+1)
	if second < 0 {
		return 0, "", false
	}
	end := indexFrom(s, ")", second+1)
	if end < 0 {
		end = len(s)
	}
	typeName = s[second+1 : end]
	if typeName == "" {
		return 0, "", false
	}
	return index, typeName, true
}

// SkipHeader reports whether a header should be ignored entirely: its base
// name holds more than one ".", as in "moc_widget.cpp.h" or "ui.form.h".
func SkipHeader(path string) bool {
	return strings.Count(filepath.Base(path), ".") > 1
}

// IsQualified reports whether name carries a scope qualifier.
func IsQualified(name string) bool {
	return strings.Contains(name, ScopeSeparator)
}

func indexFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i < 0 {
		return -1
	}
	return i + from
}

func removeWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
