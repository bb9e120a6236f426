package conformance

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"loxvm/vm"
)

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
)

// Outcome is the observed result of running a Scenario's source.
type Outcome struct {
	Stdout   string
	ExitCode int
	Stderr   string
}

// Run interprets scenario.Source on a fresh VM, capturing stdout and stderr,
// and returns the observed Outcome.
func Run(scenario Scenario) Outcome {
	var stdout bytes.Buffer

	stderrR, stderrW, pipeErr := os.Pipe()
	origStderr := os.Stderr
	if pipeErr == nil {
		os.Stderr = stderrW
	}

	v := vm.New()
	v.Stdout = &stdout

	result := v.Interpret(scenario.Source)

	var stderrBuf bytes.Buffer
	if pipeErr == nil {
		os.Stderr = origStderr
		stderrW.Close()
		io.Copy(&stderrBuf, stderrR)
	}

	exitCode := exitOK
	switch result {
	case vm.InterpretCompileError:
		exitCode = exitCompileError
	case vm.InterpretRuntimeError:
		exitCode = exitRuntimeError
	}

	return Outcome{Stdout: stdout.String(), ExitCode: exitCode, Stderr: stderrBuf.String()}
}

// Check compares an Outcome against a Scenario's Expectation, returning a
// non-nil error describing the first mismatch found.
func Check(scenario Scenario, got Outcome) error {
	if got.ExitCode != scenario.Expect.ExitCode {
		return fmt.Errorf("exit code: want %d, got %d (stderr: %s)",
			scenario.Expect.ExitCode, got.ExitCode, got.Stderr)
	}
	if scenario.Expect.Stdout != "" && got.Stdout != scenario.Expect.Stdout {
		return fmt.Errorf("stdout: want %q, got %q", scenario.Expect.Stdout, got.Stdout)
	}
	if scenario.Expect.CompileErrorLike != "" && !strings.Contains(got.Stderr, scenario.Expect.CompileErrorLike) {
		return fmt.Errorf("compile error: want substring %q, got %q", scenario.Expect.CompileErrorLike, got.Stderr)
	}
	if scenario.Expect.RuntimeErrorLike != "" && !strings.Contains(got.Stderr, scenario.Expect.RuntimeErrorLike) {
		return fmt.Errorf("runtime error: want substring %q, got %q", scenario.Expect.RuntimeErrorLike, got.Stderr)
	}
	return nil
}
