package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

type Logger struct {
	out     io.Writer
	err     io.Writer
	json    bool
	quiet   bool
	verbose bool
}

type ctxKey struct{}

func DefaultLogger() Logger {
	return Logger{
		out: os.Stdout,
		err: os.Stderr,
	}
}

func NewLogger(out, err io.Writer, json, quiet, verbose bool) Logger {
	return Logger{
		out:     out,
		err:     err,
		json:    json,
		quiet:   quiet,
		verbose: verbose,
	}
}

// Ctx returns the logger associated with the context, or a default logger
// if the context has none.
func Ctx(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return DefaultLogger()
}

// WithContext returns a new context with this logger associated.
func (l Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// Out writes a line of primary command output.
func (l Logger) Out(f string, args ...interface{}) {
	fmt.Fprintf(l.out, f+"\n", args...)
}

func (l Logger) OutRaw(s string) {
	fmt.Fprintf(l.out, "%s", s)
}

// Info writes tagged informational output to the error stream,
// unless quiet or json output is requested.
func (l Logger) Info(tag string, f string, args ...interface{}) {
	if l.quiet || l.json {
		return
	}
	print(l.err, color.New(color.FgHiGreen), tag, f, args...)
}

// Debug writes tagged debug output to the error stream when verbose.
func (l Logger) Debug(tag string, f string, args ...interface{}) {
	if !l.verbose || l.json {
		return
	}
	print(l.err, color.New(color.FgGreen), tag, f, args...)
}

func print(w io.Writer, tagColor *color.Color, tag, f string, args ...interface{}) {
	str := fmt.Sprintf(f, args...)
	for _, line := range strings.Split(str, "\n") {
		fmt.Fprintf(w, "%s  %s\n",
			tagColor.Sprint(tag),
			color.WhiteString(line))
	}
}
