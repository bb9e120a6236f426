// Package conformance runs YAML-described end-to-end scenarios against the
// VM: a script's source, its expected stdout, and its expected outcome
// (clean exit, compile error, or runtime error).
package conformance

// Suite is one YAML file: a named group of scenarios.
type Suite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Scenarios   []Scenario `yaml:"scenarios"`
}

// Scenario is a single source-in, behavior-out test case.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        string      `yaml:"skip,omitempty"`
	Source      string      `yaml:"source"`
	Expect      Expectation `yaml:"expect"`
}

// Expectation describes the observable result of interpreting Source.
// CompileErrorLike/RuntimeErrorLike, when set, are substrings the
// corresponding error message must contain; ExitCode is always checked.
type Expectation struct {
	Stdout           string `yaml:"stdout,omitempty"`
	ExitCode         int    `yaml:"exit_code"`
	CompileErrorLike string `yaml:"compile_error_like,omitempty"`
	RuntimeErrorLike string `yaml:"runtime_error_like,omitempty"`
}

// IsSkipped reports whether this scenario should be excluded from a run.
func (s *Scenario) IsSkipped() (bool, string) {
	if s.Skip == "" {
		return false, ""
	}
	return true, s.Skip
}
