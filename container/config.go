package container

import (
	"errors"
	"syscall"
)

var (
	ErrNoProgram = errors.New("launch config has no program")
	ErrNoArgv    = errors.New("launch config has no argv")
)

// Isolation selects which namespaces the child is created in. The zero
// value requests no isolation at all, which degrades Launch to a plain
// fork/exec.
type Isolation struct {
	NewPID   bool `json:"newPid"`
	NewMount bool `json:"newMount"`
}

// LaunchConfig describes one child to launch. It is built once by the
// caller and never mutated afterwards; Launch serializes it over a pipe
// into the child, so every field must survive a JSON round trip.
type LaunchConfig struct {
	// Program is the path of the executable image. It is passed to
	// execve verbatim, no PATH lookup is performed.
	Program string `json:"program"`
	// Argv is the full argument vector. Argv[0] is conventionally equal
	// to Program.
	Argv []string `json:"argv"`
	// Env is the child's environment as KEY=VALUE strings. nil means
	// inherit the current environment.
	Env []string `json:"env"`
	// Debug enables progress tracing on both sides of the launch.
	Debug bool `json:"debug"`
	// Isolation is the set of requested namespaces.
	Isolation Isolation `json:"isolation"`
	// Rootfs, when non-empty, is pivoted into before the child execs.
	// Setting it forces a mount namespace on.
	Rootfs string `json:"rootfs"`
}

func (c *LaunchConfig) validate() error {
	if c == nil || c.Program == "" {
		return ErrNoProgram
	}
	if len(c.Argv) == 0 {
		return ErrNoArgv
	}
	return nil
}

// cloneFlags computes the namespace bits for the child. SIGCHLD delivery
// is handled by os/exec, so only the CLONE_NEW* flags appear here. A
// rootfs implies a mount namespace even when the caller did not ask for
// one explicitly.
func (c *LaunchConfig) cloneFlags() uintptr {
	var flags uintptr
	if c.Isolation.NewPID {
		flags |= syscall.CLONE_NEWPID
	}
	if c.Isolation.NewMount || c.Rootfs != "" {
		flags |= syscall.CLONE_NEWNS
	}
	return flags
}
