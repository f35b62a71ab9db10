package main

import (
	"os"
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	_ "github.com/fine-structures/fine-mesh/pymesh"
	_ "github.com/go-python/gpython/stdlib"
)

// runPython runs a mesh script, or with no script, an interactive session with _pymesh importable.
// startup, if it exists, is run in the session's module first so its names are at hand at the prompt.
func runPython(script, startup string) error {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	var err error
	if script == "" {
		session := repl.New(ctx)
		if startup != "" {
			if _, serr := os.Stat(startup); serr == nil {
				_, err = py.RunFile(ctx, startup, py.CompileOpts{}, session.Module)
			} else {
				klog.V(1).Infof("no startup script at %q", startup)
			}
		}
		if err == nil {
			cli.RunREPL(session)
		}
	} else {
		start := time.Now()
		klog.Infof("running mesh script %q", script)
		if _, err = py.RunFile(ctx, script, py.CompileOpts{}, nil); err == nil {
			klog.Infof("%q finished in %v", script, time.Since(start))
		}
	}

	if err != nil {
		py.TracebackDump(err)
		return errors.Wrapf(err, "python %q", script)
	}
	return nil
}
