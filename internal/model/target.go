package model

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/labels"
)

// ExecutionTarget identifies the script to run and the single worker it runs on.
// The worker is resolved once, when the execution starts.
type ExecutionTarget struct {
	// Selector is a label selector (e.g. `app=worker,tier=batch`).
	Selector string
	// Namespace scopes the selector.
	Namespace string
	// Script is the shell script body, run with `/bin/sh -c`.
	Script string
}

// Validate validates the execution target.
func (t ExecutionTarget) Validate() error {
	if strings.TrimSpace(t.Script) == "" {
		return fmt.Errorf("script is required: %w", ErrNotValid)
	}
	if strings.TrimSpace(t.Namespace) == "" {
		return fmt.Errorf("namespace is required: %w", ErrNotValid)
	}
	if strings.TrimSpace(t.Selector) == "" {
		return fmt.Errorf("selector is required: %w", ErrNotValid)
	}
	if _, err := labels.Parse(t.Selector); err != nil {
		return fmt.Errorf("invalid selector %q: %w: %w", t.Selector, ErrNotValid, err)
	}
	return nil
}

// Worker is a resolved remote process able to run scripts.
type Worker struct {
	// Name is the backend name of the worker (pod name, container ID...).
	Name string
	// Namespace is where the worker lives.
	Namespace string
	// Container is the container inside the worker, empty means backend default.
	Container string
	// Labels are the worker labels.
	Labels map[string]string
}

func (w Worker) String() string {
	if w.Container == "" {
		return fmt.Sprintf("%s/%s", w.Namespace, w.Name)
	}
	return fmt.Sprintf("%s/%s/%s", w.Namespace, w.Name, w.Container)
}
