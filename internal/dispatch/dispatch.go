// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch maps operation kinds to their conversion handlers through
// an explicit lookup table. Handlers are registered once at assembly time;
// resolution of an unknown kind is a classified failure, not a panic.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Artifact describes the single output a handler produced: a file for most
// operations, a directory for page bursts.
type Artifact struct {
	Path  string
	Pages int
}

// Handler executes one job and returns the produced artifact. Handlers write
// only to job.Output (or inside it when it is a directory) and report
// failures by error; cleanup of partial output is the executor's job.
type Handler func(ctx context.Context, job types.JobDescriptor) (Artifact, error)

// ErrUnsupportedOperation is returned by Resolve for unregistered kinds.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// Dispatcher is the operation-kind lookup table.
type Dispatcher struct {
	handlers map[types.OpKind]Handler
}

// New returns an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{handlers: make(map[types.OpKind]Handler)}
}

// Register binds op to h. Registering the same kind twice is a wiring bug
// and panics.
func (d *Dispatcher) Register(op types.OpKind, h Handler) {
	if _, dup := d.handlers[op]; dup {
		panic(fmt.Sprintf("dispatch: duplicate handler for %s", op))
	}
	d.handlers[op] = h
}

// Resolve returns the handler for op. Unknown kinds yield an error
// classified as unsupported_operation that also satisfies
// errors.Is(err, ErrUnsupportedOperation).
func (d *Dispatcher) Resolve(op types.OpKind) (Handler, error) {
	h, ok := d.handlers[op]
	if !ok {
		return nil, types.WrapFailure(types.CodeUnsupportedOperation,
			fmt.Errorf("%w: %q", ErrUnsupportedOperation, op))
	}
	return h, nil
}

// Ops returns the registered operation kinds in sorted order.
func (d *Dispatcher) Ops() []types.OpKind {
	ops := make([]types.OpKind, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
