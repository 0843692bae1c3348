// Package uowtest provides a uow.Runner that runs bodies without a database.
package uowtest

import (
	"context"

	"github.com/kirinyoku/tour-go/internal/uow"
)

// Runner runs each body once and then its hooks if the body succeeded.
type Runner struct {
	Calls        int
	Serializable int
}

func (r *Runner) Do(ctx context.Context, fn uow.Func) error {
	r.Calls++
	return run(ctx, fn)
}

func (r *Runner) DoSerializable(ctx context.Context, fn uow.Func) error {
	r.Calls++
	r.Serializable++
	return run(ctx, fn)
}

func run(ctx context.Context, fn uow.Func) error {
	var hooks []uow.AfterCommit
	if err := fn(ctx, func(h uow.AfterCommit) { hooks = append(hooks, h) }); err != nil {
		return err
	}
	for _, h := range hooks {
		h(ctx)
	}
	return nil
}
