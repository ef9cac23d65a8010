// Package main provides the typemapper command line tool.
//
// typemapper checks mapping profiles against Go source without running the
// mapped program:
//   - check: validate every type and member path of a profile
//   - describe: print the member paths of a type as profiles address them
//   - version: print the tool and supported profile versions
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"typemapper/internal/analyze"
	"typemapper/internal/mapping"
)

const version = "0.3.0"

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	var err error

	switch args[0] {
	case "check":
		err = runCheck(ctx, args[1:], stdout, stderr)
	case "describe":
		err = runDescribe(ctx, args[1:], stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "typemapper %s (profile versions %s)\n", version, mapping.SupportedVersions)
	case "help", "-h", "-help", "--help":
		usage(stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)

		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp):
		return exitUsage
	default:
		fmt.Fprintln(stderr, "typemapper:", err)
		return exitInvalid
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `typemapper - object mapping profile tool

Usage:
  typemapper check -profile mappings.yaml [-dir dir] [-v] [packages...]
  typemapper describe [-dir dir] [-depth n] type [packages...]
  typemapper version
`)
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""

	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level))
}

func runCheck(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)

	profile := fs.String("profile", "", "mapping profile to check")
	dir := fs.String("dir", "", "directory package patterns are resolved in")
	verbose := fs.Bool("v", false, "log every diagnostic")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *profile == "" {
		fmt.Fprintln(stderr, "check: -profile is required")
		fs.Usage()

		return errUsage
	}

	logger := newLogger(stderr, *verbose)
	defer func() { _ = logger.Sync() }()

	pf, err := mapping.LoadFile(*profile)
	if err != nil {
		return err
	}

	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	graph, err := analyze.NewAnalyzer(*dir).LoadPackages(ctx, patterns...)
	if err != nil {
		return fmt.Errorf("loading packages: %w", err)
	}

	logger.Debug("loaded packages", zap.Strings("patterns", patterns), zap.Int("types", len(graph.Types)))

	res := mapping.Validate(pf, graph)
	res.Log(logger)

	if _, err := res.WriteTo(stdout); err != nil {
		return err
	}

	if res.HasErrors() {
		return fmt.Errorf("%s: %d error(s)", *profile, len(res.Errors))
	}

	fmt.Fprintf(stdout, "%s: %d mapping(s) ok\n", *profile, len(pf.TypeMappings))

	return nil
}

func runDescribe(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dir := fs.String("dir", "", "directory package patterns are resolved in")
	depth := fs.Int("depth", 3, "maximum nesting depth of listed paths")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "describe: a type name is required")
		return errUsage
	}

	name, patterns := fs.Arg(0), fs.Args()[1:]
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	graph, err := analyze.NewAnalyzer(*dir).LoadPackages(ctx, patterns...)
	if err != nil {
		return fmt.Errorf("loading packages: %w", err)
	}

	t := mapping.ResolveTypeID(name, graph)
	if t == nil {
		return fmt.Errorf("type %q not found", name)
	}

	fmt.Fprintf(stdout, "%s (%s)\n", analyze.TypeString(t), t.Deref().Kind)

	for _, p := range analyze.MemberPaths(t, *depth) {
		fmt.Fprintf(stdout, "  %-32s %s\n", p.Path, analyze.TypeString(p.Field.Type))
	}

	return nil
}
