package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/kingrea/bootstrap/internal/failure"
	"github.com/kingrea/bootstrap/support"
)

// InvokeOptions configures the process-like environment of an invocation.
// Nil streams and a nil Env fall back to the launcher's own.
type InvokeOptions struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
	Logger *log.Logger
}

// Invoke calls the entry point with args. For the duration of the call the
// descriptor's resolution context is the ambient one; the previous ambient
// context is restored on every exit path. A panic raised by application code
// is returned as *failure.Application carrying the original value.
func Invoke(ctx context.Context, d *Descriptor, args []string, opts InvokeOptions) error {
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.ErrInvocationSetup, d.Name(),
			fmt.Sprintf("Main method '%s' was not invoked: %v", d.Name(), err), err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	restore := support.Enter(d.resolver)
	defer restore()

	fn := d.host
	if d.source != nil {
		var err error
		if fn, err = bind(d, args, opts); err != nil {
			return err
		}
	}
	logger.Debug("invoking entry point", "symbol", d.Name(), "location", d.Location, "args", len(args))
	return call(fn, args)
}

// bind interprets the entry package from the resolution context and returns
// its entry function. Package initialisation runs here, so a panic during
// import is an application failure too.
func bind(d *Descriptor, args []string, opts InvokeOptions) (func([]string), error) {
	i := interp.New(interp.Options{
		GoPath:               ".",
		SourcecodeFilesystem: d.resolver.SourceFS(),
		Stdin:                opts.Stdin,
		Stdout:               opts.Stdout,
		Stderr:               opts.Stderr,
		Env:                  opts.Env,
		Args:                 append([]string{d.Module}, args...),
		Unrestricted:         true,
	})
	for _, exports := range []interp.Exports{stdlib.Symbols, support.Symbols, d.resolver.Parent().Exports()} {
		if err := i.Use(exports); err != nil {
			return nil, setupFailure(d, err)
		}
	}
	if _, err := i.Eval(fmt.Sprintf("import %q", d.Module)); err != nil {
		if app, ok := unwrapPanic(err); ok {
			return nil, app
		}
		return nil, setupFailure(d, err)
	}
	v, err := i.Eval(d.PackageName + "." + d.Symbol)
	if err != nil {
		return nil, setupFailure(d, err)
	}
	fn, ok := v.Interface().(func([]string))
	if !ok {
		return nil, setupFailure(d, fmt.Errorf("%s has type %s", d.Name(), v.Type()))
	}
	return fn, nil
}

func call(fn func([]string), args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if p, ok := r.(interp.Panic); ok {
				err = &failure.Application{Value: p.Value, Stack: p.Stack}
				return
			}
			if v, ok := r.(reflect.Value); ok && v.IsValid() && v.CanInterface() {
				r = v.Interface()
			}
			err = &failure.Application{Value: r, Stack: debug.Stack()}
		}
	}()
	fn(args)
	return nil
}

func unwrapPanic(err error) (*failure.Application, bool) {
	var p interp.Panic
	if errors.As(err, &p) {
		return &failure.Application{Value: p.Value, Stack: p.Stack}, true
	}
	return nil, false
}

func setupFailure(d *Descriptor, err error) error {
	return failure.Wrap(failure.ErrInvocationSetup, d.Name(),
		fmt.Sprintf("Main method '%s' cannot be invoked: %v", d.Name(), err), err)
}
