// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

func noopHandler(_ context.Context, _ types.JobDescriptor) (Artifact, error) {
	return Artifact{Path: "out"}, nil
}

func TestResolve(t *testing.T) {
	d := New()
	d.Register(types.OpMerge, noopHandler)

	h, err := d.Resolve(types.OpMerge)
	if err != nil {
		t.Fatalf("Resolve(merge) = %v", err)
	}
	if h == nil {
		t.Fatal("nil handler for registered op")
	}
}

func TestResolveUnknown(t *testing.T) {
	d := New()

	_, err := d.Resolve(types.OpKind("pdf-to-epub"))
	if err == nil {
		t.Fatal("expected error for unregistered op")
	}
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("error %v does not wrap ErrUnsupportedOperation", err)
	}
	if code := types.ClassifyError(err); code != types.CodeUnsupportedOperation {
		t.Errorf("code = %q, want %q", code, types.CodeUnsupportedOperation)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	d := New()
	d.Register(types.OpMerge, noopHandler)

	defer func() {
		if recover() == nil {
			t.Fatal("duplicate Register did not panic")
		}
	}()
	d.Register(types.OpMerge, noopHandler)
}

func TestOpsSorted(t *testing.T) {
	d := New()
	d.Register(types.OpSplit, noopHandler)
	d.Register(types.OpCompress, noopHandler)
	d.Register(types.OpMerge, noopHandler)

	ops := d.Ops()
	want := []types.OpKind{types.OpCompress, types.OpMerge, types.OpSplit}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v", ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("ops[%d] = %q, want %q", i, ops[i], want[i])
		}
	}
}
