package extract

import "strings"

// ScopeSeparator joins namespace and class names in qualified names.
const ScopeSeparator = "::"

// NamespaceTracker holds the namespaces open at the scanner's cursor within a
// single file, outermost first. Every entry carries a trailing ScopeSeparator
// so Prefix is a plain concatenation.
//
// Braces are counted per line, not per character: a line holding "{" bumps the
// nested counter once no matter how many braces it has.
type NamespaceTracker struct {
	stack  []string
	opened bool
	nested int
	frozen bool
}

// NewNamespaceTracker returns an empty tracker. Trackers are never shared
// between files.
func NewNamespaceTracker() *NamespaceTracker {
	return &NamespaceTracker{}
}

// Open pushes a namespace. name must not include the separator.
func (t *NamespaceTracker) Open(name string) {
	t.stack = append(t.stack, name+ScopeSeparator)
	t.opened = true
}

// Active reports whether any namespace has been opened in this file, even if
// all of them have since been closed.
func (t *NamespaceTracker) Active() bool {
	return t.opened
}

// OpenBrace records a non-namespace, non-class "{" line.
func (t *NamespaceTracker) OpenBrace() {
	t.nested++
}

// CloseBrace records a "}" line. A pending nested brace absorbs it; otherwise
// the innermost namespace is closed. Once frozen, unmatched closes are
// ignored. Closing with nothing left to pop returns ErrUnbalancedNamespace.
func (t *NamespaceTracker) CloseBrace() error {
	if t.nested > 0 {
		t.nested--
		return nil
	}
	if t.frozen {
		return nil
	}
	if len(t.stack) == 0 {
		return ErrUnbalancedNamespace
	}
	t.stack = t.stack[:len(t.stack)-1]
	return nil
}

// Freeze stops unmatched closing braces from popping namespaces. The class
// table builder freezes the stack once the first class body starts.
func (t *NamespaceTracker) Freeze() {
	t.frozen = true
}

// Depth is the number of open namespaces.
func (t *NamespaceTracker) Depth() int {
	return len(t.stack)
}

// Stack returns a copy of the open namespaces, outermost first.
func (t *NamespaceTracker) Stack() []string {
	out := make([]string, len(t.stack))
	copy(out, t.stack)
	return out
}

// Prefix is the concatenation of the open namespaces, e.g. "Eaagles::Basic::".
func (t *NamespaceTracker) Prefix() string {
	return strings.Join(t.stack, "")
}

// Qualify prepends the current prefix to name.
func (t *NamespaceTracker) Qualify(name string) string {
	return t.Prefix() + name
}
