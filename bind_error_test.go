package bound

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	bounderrors "github.com/ygrebnov/bound/errors"
)

func pe(path string, err error) PathError {
	return PathError{Path: path, Err: err}
}

func TestBindError_Add_and_Len_Empty_nilReceiverSafe(t *testing.T) {
	t.Parallel()

	var beNil *BindError
	beNil.Add(pe("a", errors.New("x"))) // must not panic
	if beNil.Len() != 0 || !beNil.Empty() || beNil.Issues() != nil || beNil.Error() != "" {
		t.Fatalf("nil receiver not empty")
	}

	be := &BindError{}
	if be.Len() != 0 || !be.Empty() || be.Error() != "" {
		t.Fatalf("initial Len/Empty wrong: Len=%d Empty=%v", be.Len(), be.Empty())
	}
	be.Add(pe("a", errors.New("x")))
	be.Add(pe("b.c", errors.New("y")))
	if be.Len() != 2 || be.Empty() {
		t.Fatalf("Len/Empty wrong after Add: Len=%d Empty=%v", be.Len(), be.Empty())
	}

	issues := be.Issues()
	issues[0].Path = "changed"
	if be.Issues()[0].Path != "a" {
		t.Fatalf("Issues() must return a copy")
	}
}

func TestPathError_Kind(t *testing.T) {
	t.Parallel()

	foreign := errors.New("foreign")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"sentinel", bounderrors.ErrShapeMismatch, bounderrors.ErrShapeMismatch},
		{"decorated sentinel", errors.Join(bounderrors.ErrDuplicateSubscription), bounderrors.ErrDuplicateSubscription},
		{"foreign", foreign, foreign},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pe("p", tt.err).Kind()
			if (got == nil) != (tt.want == nil) || (got != nil && !errors.Is(got, tt.want)) {
				t.Fatalf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBindError_ErrorGroupsByKind(t *testing.T) {
	t.Parallel()

	be1 := &BindError{}
	be1.Add(pe("inside", errors.New("boom")))
	if s := be1.Error(); s != "inside: boom" {
		t.Fatalf("1 issue Error() = %q", s)
	}

	be := &BindError{}
	be.Add(pe("a", bounderrors.ErrDuplicateSubscription))
	be.Add(pe("inside", bounderrors.ErrShapeMismatch))
	be.Add(pe("b", bounderrors.ErrDuplicateSubscription))

	s := be.Error()
	if !strings.HasPrefix(s, "bind failed for 3 properties: ") {
		t.Fatalf("Error() = %q", s)
	}
	dup := bounderrors.ErrDuplicateSubscription.Error() + " (a, b)"
	shape := bounderrors.ErrShapeMismatch.Error() + " (inside)"
	if i, j := strings.Index(s, dup), strings.Index(s, shape); i < 0 || j < 0 || i > j {
		t.Fatalf("Error() must group paths by kind in order of first occurrence: %q", s)
	}
}

func TestBindError_Unwrap_Is(t *testing.T) {
	t.Parallel()

	be := &BindError{}
	be.Add(pe("a", bounderrors.ErrDuplicateSubscription))
	be.Add(pe("b", bounderrors.ErrShapeMismatch))
	be.Add(pe("c", nil))

	for _, target := range []error{bounderrors.ErrDuplicateSubscription, bounderrors.ErrShapeMismatch} {
		if !errors.Is(be, target) {
			t.Fatalf("errors.Is(be, %v) = false", target)
		}
	}
	if errors.Is(be, bounderrors.ErrNilObject) {
		t.Fatalf("unexpected match for ErrNilObject")
	}
	if got := len(be.Unwrap()); got != 2 {
		t.Fatalf("Unwrap() returned %d causes, want 2", got)
	}

	var p PathError
	if !errors.As(pe("x", bounderrors.ErrTypeMismatch), &p) || !errors.Is(p, bounderrors.ErrTypeMismatch) {
		t.Fatalf("PathError must unwrap to its cause")
	}
}

func TestBindError_ForPath_Paths_Matching(t *testing.T) {
	t.Parallel()

	be := &BindError{}
	be.Add(pe("a", bounderrors.ErrDuplicateSubscription))
	be.Add(pe("b", bounderrors.ErrLiveProperty))
	be.Add(pe("a", errors.New("3")))

	if got := be.ForPath("a"); len(got) != 2 || got[1].Err.Error() != "3" {
		t.Fatalf("ForPath(a) = %+v", got)
	}
	if got := be.ForPath("missing"); got != nil {
		t.Fatalf("ForPath(missing) = %+v, want nil", got)
	}
	if got := be.Paths(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Paths() = %v", got)
	}
	if got := be.Matching(bounderrors.ErrLiveProperty); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("Matching(ErrLiveProperty) = %v", got)
	}
	if got := be.Matching(bounderrors.ErrTypeMismatch); got != nil {
		t.Fatalf("Matching(ErrTypeMismatch) = %v, want nil", got)
	}
}

func TestBindError_MarshalJSON(t *testing.T) {
	t.Parallel()

	var beNil *BindError
	if b, err := beNil.MarshalJSON(); err != nil || string(b) != "null" {
		t.Fatalf("nil MarshalJSON = %s, %v", b, err)
	}

	be := &BindError{}
	be.Add(pe("b.c", errors.New("y")))
	be.Add(pe("a", errors.New("x")))
	be.Add(pe("a", nil))

	data, err := json.Marshal(be)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	want := `[{"path":"b.c","error":"y"},{"path":"a","error":"x"},{"path":"a"}]`
	if string(data) != want {
		t.Fatalf("MarshalJSON = %s, want %s", data, want)
	}
}
