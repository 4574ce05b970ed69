package container

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// LaunchResult is what the caller gets back from Launch or Spawn. It is
// complete on every path: a ChildPID of -1 means the launch failed
// before any child existed, a valid ChildPID with a nil Outcome means
// the child was created but its fate is unknown (Spawn, or a failed
// wait). Release must be called once the caller is done with it;
// calling it again is a safe no-op.
type LaunchResult struct {
	ChildPID int
	Outcome  Outcome

	ctx *executionContext
}

// Release frees the resources held for the launch. It is idempotent
// and safe on results from failed launches.
func (r *LaunchResult) Release() {
	if r == nil || r.ctx == nil {
		return
	}
	r.ctx.release()
	r.ctx = nil
}

// Launch runs one child under the configured isolation and blocks until
// it terminates. The returned result is never nil; on error its
// ChildPID tells whether a child was ever created. There is no timeout
// and no cancellation: a caller wanting to abort must signal ChildPID
// out of band, which then surfaces as a Signaled outcome.
func Launch(config *LaunchConfig) (*LaunchResult, error) {
	result, err := start(config)
	if err != nil {
		return result, err
	}
	outcome, err := waitChild(result.ctx.cmd)
	if err != nil {
		// The child exists and its pid stays valid; only its fate is
		// unknown. Callers must check both fields.
		return result, fmt.Errorf("wait for child %d: %v", result.ChildPID, err)
	}
	result.Outcome = outcome
	if config.Debug {
		log.Debugf("child %d %v", result.ChildPID, outcome)
	}
	return result, nil
}

// Spawn is the non-blocking variant of Launch: same creation contract,
// but it returns as soon as the child is running, with a nil Outcome.
// Callers that never wait for the child should have called InitReaper
// first so the child does not linger as a zombie.
func Spawn(config *LaunchConfig) (*LaunchResult, error) {
	return start(config)
}

func start(config *LaunchConfig) (*LaunchResult, error) {
	if err := config.validate(); err != nil {
		return &LaunchResult{ChildPID: -1}, err
	}
	ctx, err := newExecutionContext(config)
	if err != nil {
		return &LaunchResult{ChildPID: -1}, err
	}
	if config.Debug {
		log.Debugf("executing: %s", strings.Join(config.Argv, " "))
		log.Debugf("namespaces: pid=%v mount=%v rootfs=%q",
			config.Isolation.NewPID,
			config.Isolation.NewMount || config.Rootfs != "",
			config.Rootfs)
	}
	if err := ctx.cmd.Start(); err != nil {
		ctx.release()
		return &LaunchResult{ChildPID: -1}, fmt.Errorf("create child: %v", err)
	}
	result := &LaunchResult{ChildPID: ctx.cmd.Process.Pid, ctx: ctx}
	if config.Debug {
		log.Debugf("child pid in parent namespace: %d", result.ChildPID)
	}
	if err := ctx.sendChildConfig(config); err != nil {
		// The child will fail its config read and exit on its own; the
		// broken pipe is logged but the launch proceeds to the wait so
		// the child is still reaped.
		log.Errorf("Send config to child %d error %v", result.ChildPID, err)
	}
	return result, nil
}

// waitChild blocks until the specific child behind cmd terminates and
// maps its raw wait status. This explicit wait targets one pid and is
// unaffected by the reaper's collection of unrelated children.
func waitChild(cmd *exec.Cmd) (Outcome, error) {
	err := cmd.Wait()
	if err == nil {
		return Exited{Status: 0}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return mapWaitStatus(status), nil
		}
	}
	return nil, err
}
