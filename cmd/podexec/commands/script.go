package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/podexec/internal/model"
)

// scriptFlags are the flags that select the script to run and its environment.
type scriptFlags struct {
	script   string
	file     string
	envSpecs []string
}

func registerScriptFlags(cmd *kingpin.CmdClause) *scriptFlags {
	f := &scriptFlags{}

	cmd.Arg("script", "Shell script to run on the worker.").StringVar(&f.script)
	cmd.Flag("file", "Read the script from a file, use - for stdin.").Short('f').StringVar(&f.file)
	cmd.Flag("env", "Environment variables exported before the script (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&f.envSpecs)

	return f
}

// load returns the script to run with the environment exports prepended.
func (f scriptFlags) load(stdin io.Reader) (string, error) {
	if f.script != "" && f.file != "" {
		return "", fmt.Errorf("script argument and --file are exclusive: %w", model.ErrNotValid)
	}

	script := f.script
	switch {
	case f.file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("could not read script from stdin: %w", err)
		}
		script = string(b)
	case f.file != "":
		b, err := os.ReadFile(f.file)
		if err != nil {
			return "", fmt.Errorf("could not read script file: %w", err)
		}
		script = string(b)
	}
	if script == "" {
		return "", fmt.Errorf("a script is required: %w", model.ErrNotValid)
	}

	env, err := parseEnvSpecs(f.envSpecs)
	if err != nil {
		return "", fmt.Errorf("invalid --env value: %w", err)
	}

	return scriptWithEnv(env, script), nil
}

// targetFlags select the worker.
type targetFlags struct {
	namespace string
	selector  string
}

func registerTargetFlags(cmd *kingpin.CmdClause) *targetFlags {
	f := &targetFlags{}

	cmd.Flag("namespace", "Namespace of the worker.").Short('n').Default("default").StringVar(&f.namespace)
	cmd.Flag("selector", "Label selector of the worker (e.g. app=worker,tier=batch).").Short('l').Required().StringVar(&f.selector)

	return f
}

// terminalError returns the command result of the last event of an execution.
func terminalError(last model.Event, streamErr error) error {
	switch last.Kind {
	case model.EventKindCompleted:
		if last.ExitCode != 0 {
			return ExitCodeError{Code: last.ExitCode}
		}
		return nil
	case model.EventKindFailed:
		err := last.Err
		if err == nil {
			err = errors.New("no details")
		}
		return fmt.Errorf("execution failed (%s): %w", last.Reason, err)
	}

	if streamErr != nil {
		return streamErr
	}
	return fmt.Errorf("execution ended without result")
}
