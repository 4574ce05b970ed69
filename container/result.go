package container

import (
	"fmt"
	"syscall"
)

// Outcome classifies how a child terminated. Exactly two things can
// happen to a fully created child: it exits on its own or a signal
// kills it.
type Outcome interface {
	// ExitCode is the single-integer summary a shell would report:
	// the status verbatim for a normal exit, 128+signal for a signal
	// death.
	ExitCode() int
	String() string
}

// Exited is a normal termination with the child's own status.
type Exited struct {
	Status int
}

func (e Exited) ExitCode() int {
	return e.Status
}

func (e Exited) String() string {
	return fmt.Sprintf("exited with status %d", e.Status)
}

// Signaled is a termination forced by a signal. The original signal
// number is preserved alongside the derived shell convention code.
type Signaled struct {
	Signal syscall.Signal
}

func (s Signaled) ExitCode() int {
	return 128 + int(s.Signal)
}

func (s Signaled) String() string {
	return fmt.Sprintf("killed by signal %d", int(s.Signal))
}

// mapWaitStatus translates a raw wait status into an Outcome.
func mapWaitStatus(status syscall.WaitStatus) Outcome {
	if status.Signaled() {
		return Signaled{Signal: status.Signal()}
	}
	return Exited{Status: status.ExitStatus()}
}
