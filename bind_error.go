package bound

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	bounderrors "github.com/ygrebnov/bound/errors"
)

// PathError is a failure to wire one property during Bind.
// It unwraps to the underlying cause so callers can use errors.Is/As.
type PathError struct {
	Path string // dotted path to the property (e.g., inside.another)
	Err  error
}

func (e PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e PathError) Unwrap() error { return e.Err }

// bindKinds are the failures a single property can hit during Bind, in the
// order Kind tries them.
var bindKinds = []error{
	bounderrors.ErrDuplicateSubscription,
	bounderrors.ErrShapeMismatch,
	bounderrors.ErrTypeMismatch,
	bounderrors.ErrLiveProperty,
	bounderrors.ErrNilObject,
}

// Kind returns the bound sentinel e matches, or e.Err itself for foreign errors.
func (e PathError) Kind() error {
	for _, k := range bindKinds {
		if errors.Is(e.Err, k) {
			return k
		}
	}
	return e.Err
}

// BindError collects the properties a Bind call could not wire. Bind keeps
// walking after a failure, so one BindError may carry issues of several kinds.
// It is filled by a single Bind call and is not safe for concurrent Add.
type BindError struct {
	issues []PathError
}

// Add records a failing property.
func (be *BindError) Add(pe PathError) {
	if be == nil {
		return
	}
	be.issues = append(be.issues, pe)
}

// Len returns the number of failing properties.
func (be *BindError) Len() int {
	if be == nil {
		return 0
	}
	return len(be.issues)
}

// Empty reports whether every property was wired.
func (be *BindError) Empty() bool { return be.Len() == 0 }

// Issues returns a copy of the recorded failures in walk order.
func (be *BindError) Issues() []PathError {
	if be == nil {
		return nil
	}
	return append([]PathError(nil), be.issues...)
}

// Error lists the failing paths grouped by kind, kinds in order of first
// occurrence:
//
//	bind failed for 3 properties: binding is already declared (a, b); object shape does not match bound storage (inside)
func (be *BindError) Error() string {
	switch be.Len() {
	case 0:
		return ""
	case 1:
		return be.issues[0].Error()
	}

	var (
		kinds []string
		paths = make(map[string][]string)
	)
	for _, pe := range be.issues {
		k := "<nil>"
		if kind := pe.Kind(); kind != nil {
			k = kind.Error()
		}
		if _, ok := paths[k]; !ok {
			kinds = append(kinds, k)
		}
		paths[k] = append(paths[k], pe.Path)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "bind failed for %d properties: ", len(be.issues))
	for i, k := range kinds {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s (%s)", k, strings.Join(paths[k], ", "))
	}
	return b.String()
}

// Unwrap exposes every cause, so errors.Is matches any recorded kind.
func (be *BindError) Unwrap() []error {
	if be == nil {
		return nil
	}
	errs := make([]error, 0, len(be.issues))
	for _, pe := range be.issues {
		if pe.Err != nil {
			errs = append(errs, pe.Err)
		}
	}
	return errs
}

// ForPath returns the issues recorded for a dotted path.
func (be *BindError) ForPath(path string) []PathError {
	if be == nil {
		return nil
	}
	var out []PathError
	for _, pe := range be.issues {
		if pe.Path == path {
			out = append(out, pe)
		}
	}
	return out
}

// Paths returns the failing paths in order of first occurrence.
func (be *BindError) Paths() []string {
	if be == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(be.issues))
	var out []string
	for _, pe := range be.issues {
		if _, ok := seen[pe.Path]; !ok {
			seen[pe.Path] = struct{}{}
			out = append(out, pe.Path)
		}
	}
	return out
}

// Matching returns the paths whose failure matches target through errors.Is,
// e.g. every property that was already subscribed.
func (be *BindError) Matching(target error) []string {
	if be == nil {
		return nil
	}
	var out []string
	for _, pe := range be.issues {
		if errors.Is(pe.Err, target) {
			out = append(out, pe.Path)
		}
	}
	return out
}

// MarshalJSON encodes the issues in walk order as {"path", "error"} objects.
func (be *BindError) MarshalJSON() ([]byte, error) {
	if be == nil {
		return []byte("null"), nil
	}
	type issue struct {
		Path  string `json:"path"`
		Error string `json:"error,omitempty"`
	}
	out := make([]issue, 0, len(be.issues))
	for _, pe := range be.issues {
		i := issue{Path: pe.Path}
		if pe.Err != nil {
			i.Error = pe.Err.Error()
		}
		out = append(out, i)
	}
	return json.Marshal(out)
}
