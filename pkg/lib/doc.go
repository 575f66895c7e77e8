// Package lib provides a Go SDK for running scripts on cluster workers and
// streaming their output.
//
// This package allows applications to run scripts on workers selected by labels
// without shelling out to the podexec CLI binary or going through a podexec
// server. It is useful for automation and building tools on top of podexec.
//
// # Quick Start
//
// Create a client and stream the events of an execution:
//
//	client, err := lib.New(lib.Config{Backend: lib.BackendKubernetes})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := client.Execute(ctx, lib.Target{
//	    Namespace: "default",
//	    Selector:  "app=worker",
//	    Script:    "echo hello; exit 3",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for ev := range events {
//	    switch ev.Kind {
//	    case lib.EventOutput:
//	        fmt.Printf("[%s] %s\n", ev.Channel, ev.Line)
//	    case lib.EventCompleted:
//	        fmt.Printf("exit code: %d\n", ev.ExitCode)
//	    case lib.EventFailed:
//	        fmt.Printf("failed: %s\n", ev.Err)
//	    }
//	}
//
// Use [Client.Run] to write the output to writers and get the exit code:
//
//	res, err := client.Run(ctx, target, os.Stdout, os.Stderr)
//
// # Backends
//
// The SDK supports three backend types:
//
//   - [BackendKubernetes]: Pods selected by label selector in a namespace, scripts
//     run with the exec subresource.
//   - [BackendDocker]: Running containers selected by labels, the namespace is the
//     value of a container label (the compose project by default).
//   - [BackendLocal]: Workers configured in [Config].LocalWorkers, scripts run as
//     local processes. No real infrastructure needed.
//
// # Exit Codes
//
// The script exit status is reported by the worker shell on stderr and never
// appears as output. When it can't be observed the exit code is 1.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotValid]: Invalid input (e.g. empty script or malformed selector).
//   - [ErrWorkerNotFound]: No worker matches the selector in the namespace.
//   - [ErrConnection]: Transport failure with the backend or the worker.
//
// # Health Checks
//
// Run preflight checks to verify the backend environment:
//
//	for _, r := range client.Doctor(ctx) {
//	    fmt.Printf("%s: %s (%s)\n", r.ID, r.Message, r.Status)
//	}
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. Every execution
// resolves its own worker and opens its own stream.
package lib
