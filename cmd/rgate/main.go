// Command rgate is a command-line client for the gateway bridge: it dials
// a running gateway, resolves a target through the default namespace view,
// and performs one call/construct/help/import operation before exiting.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sammck-go/rgate/callback"
	"github.com/sammck-go/rgate/diagnostics"
	"github.com/sammck-go/rgate/gateway"
	"github.com/sammck-go/rgate/logging"
	"github.com/sammck-go/rgate/proxy"
	"github.com/sammck-go/rgate/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("rgate", pflag.ContinueOnError)
	flagSet.BoolP("help", "h", false, "show help")

	cfg, err := parseConfig(flagSet, os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			printUsage(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage(flagSet)
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printUsage(flagSet)
		return fmt.Errorf("missing subcommand")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.NewConsoleLogger(os.Stderr, logging.IsTerminal, "rgate", cfg.LogLevel)

	registry := callback.NewRegistry()
	pool := gateway.NewPool(logger, cfg.Address, cfg.MaxConnections, cfg.currentToken)
	defer pool.CloseAll()
	client := gateway.NewClient(logger, pool, registry)

	if cfg.AuthTokenFile != "" {
		done := make(chan struct{})
		defer close(done)
		go watchAuthToken(logger, cfg.AuthTokenFile, cfg, done)
	}

	callbackServer := callback.NewServer(logger, cfg.CallbackAddr, registry)
	defer callbackServer.Close()
	go func() {
		if err := callbackServer.Serve(); err != nil {
			logger.WLogf("callback server stopped: %s", err)
		}
	}()

	if cfg.DiagnosticsAddr != "" {
		diagServer := diagnostics.NewServer(logger, pool)
		defer diagServer.Close()
		go func() {
			if err := diagServer.ListenAndServe(ctx, cfg.DiagnosticsAddr); err != nil {
				logger.WLogf("diagnostics server stopped: %s", err)
			}
		}()
	}

	view := client.DefaultView()

	switch args[0] {
	case "call":
		return runCall(ctx, view, args[1:])
	case "construct":
		return runConstruct(ctx, view, args[1:])
	case "help":
		return runHelp(ctx, view, args[1:])
	case "import":
		return runImport(ctx, view, args[1:])
	default:
		printUsage(flagSet)
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func printUsage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `rgate — command-line client for the gateway bridge.

Usage:
  rgate [flags] call <class-fqn> <static-method> [args...]
  rgate [flags] construct <fqn> [args...]
  rgate [flags] help <class-fqn> [pattern]
  rgate [flags] import <fqn>

Flags:
`)
	flagSet.PrintDefaults()
}

// resolveClass walks a dotted name through the namespace view to a *Class,
// promoting each segment the way property access would.
func resolveClass(view *proxy.View, dotted string) (*proxy.Class, error) {
	first, rest := splitFirstSegment(dotted)
	node, err := view.Prop(first)
	if err != nil {
		return nil, err
	}
	for _, seg := range rest {
		switch n := node.(type) {
		case *proxy.Package:
			node, err = n.Prop(seg)
			if err != nil {
				return nil, err
			}
		case *proxy.Class:
			return nil, fmt.Errorf("%s is a class, cannot descend into %q", n.FQN(), seg)
		}
	}
	if c, ok := node.(*proxy.Class); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%s does not resolve to a class", dotted)
}

func splitFirstSegment(dotted string) (string, []string) {
	segs := splitDots(dotted)
	if len(segs) == 0 {
		return "", nil
	}
	return segs[0], segs[1:]
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func runCall(ctx context.Context, view *proxy.View, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("call requires a target and a method name")
	}
	class, err := resolveClass(view, args[0])
	if err != nil {
		return err
	}
	values, err := parseArgValues(args[2:])
	if err != nil {
		return err
	}
	result, err := class.Call(ctx, args[1], values...)
	if err != nil {
		return err
	}
	printValue(result)
	return nil
}

func runConstruct(ctx context.Context, view *proxy.View, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("construct requires a fully-qualified class name")
	}
	class, err := resolveClass(view, args[0])
	if err != nil {
		return err
	}
	values, err := parseArgValues(args[1:])
	if err != nil {
		return err
	}
	result, err := class.Construct(ctx, values...)
	if err != nil {
		return err
	}
	printValue(result)
	return nil
}

func runHelp(ctx context.Context, view *proxy.View, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("help requires a fully-qualified class name")
	}
	class, err := resolveClass(view, args[0])
	if err != nil {
		return err
	}
	pattern := ""
	if len(args) > 1 {
		pattern = args[1]
	}
	text, err := class.Help(ctx, pattern)
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func runImport(ctx context.Context, view *proxy.View, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("import requires a fully-qualified name")
	}
	return view.Import(ctx, args[0])
}

// parseArgValues converts CLI argument strings into wire.Values, guessing
// int64, then float64, then bool, then falling back to string — a
// convenience for interactive use, not a general-purpose type system.
func parseArgValues(raw []string) ([]wire.Value, error) {
	values := make([]wire.Value, 0, len(raw))
	for _, s := range raw {
		values = append(values, parseArgValue(s))
	}
	return values, nil
}

func parseArgValue(s string) wire.Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return wire.FromInt(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return wire.FromFloat64(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return wire.FromBool(b)
	}
	return wire.FromString(s)
}

func printValue(v wire.Value) {
	if v.IsNull() {
		fmt.Println("null")
		return
	}
	switch v.Tag {
	case wire.TagString:
		fmt.Println(v.Str)
	case wire.TagBool:
		fmt.Println(v.Bool)
	case wire.TagInt32:
		fmt.Println(v.Int32)
	case wire.TagInt64:
		fmt.Println(v.Int64)
	case wire.TagDouble:
		fmt.Println(v.Float64)
	case wire.TagDecimal:
		fmt.Println(v.Decimal)
	default:
		fmt.Printf("<%s %s>\n", v.Tag, v.RefID)
	}
}
