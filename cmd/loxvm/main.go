package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"loxvm/bytecode"
	"loxvm/compiler"
	"loxvm/config"
	"loxvm/debug"
	"loxvm/vm"
)

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
)

func main() {
	traceEnabled := flag.Bool("trace", false, "Enable execution tracing")
	traceFilter := flag.String("trace-filter", "", "Trace filter pattern (glob, e.g., 'do_*' or 'update_*'); comma-separated for multiple patterns")
	configPath := flag.String("config", "", "Path to a YAML resource-limits config file")
	flag.Usage = usage
	flag.Parse()

	var filters []string
	if *traceFilter != "" {
		filters = strings.Split(*traceFilter, ",")
	}
	debug.Init(*traceEnabled, filters, os.Stderr)

	limits := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loxvm: %v", err)
		}
		limits = loaded
	}

	args := flag.Args()
	if len(args) == 0 {
		os.Exit(runRepl(limits))
	}

	switch args[0] {
	case "run":
		if len(args) != 2 {
			usage()
			os.Exit(exitIOError)
		}
		os.Exit(runFile(args[1], limits))
	case "repl":
		os.Exit(runRepl(limits))
	case "build":
		buildFlags := flag.NewFlagSet("build", flag.ExitOnError)
		outPath := buildFlags.String("o", "", "Output path for the compiled chunk listing")
		buildFlags.Parse(args[1:])
		rest := buildFlags.Args()
		if len(rest) > 1 {
			// Flags may also follow the input path, as in "build in.lox -o out.loxc".
			buildFlags.Parse(rest[1:])
			rest = append([]string{rest[0]}, buildFlags.Args()...)
		}
		if len(rest) != 1 || *outPath == "" {
			usage()
			os.Exit(exitIOError)
		}
		os.Exit(buildFile(rest[0], *outPath))
	case "disassemble":
		if len(args) != 2 {
			usage()
			os.Exit(exitIOError)
		}
		os.Exit(disassembleFile(args[1]))
	default:
		// Bare "loxvm script.lox" runs the script directly.
		os.Exit(runFile(args[0], limits))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: loxvm [run|repl|build|disassemble] [args...]")
	fmt.Fprintln(os.Stderr, "  loxvm                    start a REPL")
	fmt.Fprintln(os.Stderr, "  loxvm run script.lox     run a script")
	fmt.Fprintln(os.Stderr, "  loxvm build in.lox -o out.loxc   compile without running")
	fmt.Fprintln(os.Stderr, "  loxvm disassemble f.lox  print bytecode for a script")
}

func newVM(limits config.Config) *vm.VM {
	v := vm.New()
	v.SetLimits(limits.Limits.MaxCallFrames, limits.Limits.MaxStackSlots)
	return v
}

func runFile(path string, limits config.Config) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loxvm: %v\n", err)
		return exitIOError
	}

	v := newVM(limits)
	switch v.Interpret(string(source)) {
	case vm.InterpretCompileError:
		return exitCompileError
	case vm.InterpretRuntimeError:
		return exitRuntimeError
	default:
		return exitOK
	}
}

// runRepl reads and executes one line at a time: each line is compiled and
// run as its own top-level script, but globals and the intern table
// persist across lines on the same VM instance.
func runRepl(limits config.Config) int {
	v := newVM(limits)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return exitOK
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		v.Interpret(line)
	}
}

func buildFile(inPath, outPath string) int {
	source, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loxvm: %v\n", err)
		return exitIOError
	}

	interner := bytecode.NewInterner()
	fn, err := compiler.Compile(string(source), interner)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return exitCompileError
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loxvm: %v\n", err)
		return exitIOError
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	debug.DisassembleChunk(w, &fn.Chunk, "script")
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "loxvm: %v\n", err)
		return exitIOError
	}
	return exitOK
}

func disassembleFile(path string) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loxvm: %v\n", err)
		return exitIOError
	}

	interner := bytecode.NewInterner()
	fn, err := compiler.Compile(string(source), interner)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return exitCompileError
	}

	debug.DisassembleChunk(os.Stdout, &fn.Chunk, path)
	return exitOK
}
