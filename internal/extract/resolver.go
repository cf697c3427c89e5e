package extract

import (
	"context"
	"strings"
)

// Resolver finds the class a possibly qualified name refers to from inside a
// stack of open namespaces. The search is best effort and greedy:
//
//  1. the name exactly as written;
//  2. when the name is qualified and its leading segment equals one of the open
//     namespaces (innermost first), the name with that segment stripped, and
//     nothing else;
//  3. otherwise the name prefixed by the open namespaces, growing the prefix
//     from the outermost namespace inwards.
//
// The first hit wins. A miss is not an error.
type Resolver struct {
	lookup ClassLookup

	// SkipOutermostScope keeps step 2 from ever examining the outermost
	// namespace: only namespaces below the outermost are compared. Off by
	// default.
	SkipOutermostScope bool
}

// NewResolver creates a Resolver over lookup.
func NewResolver(lookup ClassLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve returns the id of the class rawName refers to. namespaces is the
// open stack, outermost first, each entry ending in ScopeSeparator.
func (r *Resolver) Resolve(ctx context.Context, rawName string, namespaces []string) (int64, bool, error) {
	if rawName == "" {
		return 0, false, nil
	}

	id, ok, err := r.lookup.FindClassIDByName(ctx, rawName)
	if err != nil || ok {
		return id, ok, err
	}

	if sep := strings.Index(rawName, ScopeSeparator); sep >= 0 {
		leading := rawName[:sep+len(ScopeSeparator)]
		if r.enclosedBy(leading, namespaces) {
			return r.lookup.FindClassIDByName(ctx, strings.TrimPrefix(rawName, leading))
		}
	}

	prefix := ""
	for _, ns := range namespaces {
		prefix += ns
		id, ok, err := r.lookup.FindClassIDByName(ctx, prefix+rawName)
		if err != nil || ok {
			return id, ok, err
		}
	}
	return 0, false, nil
}

// ResolveExact qualifies name with the full namespace prefix and looks it up
// without any search. It is used for unqualified names, which are expected to
// live in the current scope.
func (r *Resolver) ResolveExact(ctx context.Context, name string, namespaces []string) (int64, bool, error) {
	return r.lookup.FindClassIDByName(ctx, strings.Join(namespaces, "")+name)
}

// ResolveReference picks Resolve for qualified names and ResolveExact for
// unqualified ones, the rule shared by base classes and slot types.
func (r *Resolver) ResolveReference(ctx context.Context, name string, namespaces []string) (int64, bool, error) {
	if IsQualified(name) {
		return r.Resolve(ctx, name, namespaces)
	}
	return r.ResolveExact(ctx, name, namespaces)
}

func (r *Resolver) enclosedBy(segment string, namespaces []string) bool {
	lowest := 0
	if r.SkipOutermostScope {
		lowest = 1
	}
	for i := len(namespaces) - 1; i >= lowest; i-- {
		if namespaces[i] == segment {
			return true
		}
	}
	return false
}
