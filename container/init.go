package container

import (
	"os"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// Child-side exit statuses. 127 is the shell convention for "command
// not found"; 125 marks a failure while setting up isolation, kept
// clear of 126/127 so callers can tell the two apart.
const (
	isolationFailureStatus = 125
	execFailureStatus      = 127
)

// RunInit is the first and only logic inside the new namespaces. The
// parent started this binary as "init" with the launch config on a
// pipe; by the time we run here the child process already exists, so
// every failure must turn into a process exit status rather than a
// returned error. On success the final Exec never returns.
func RunInit() error {
	config, err := readChildConfig()
	if err != nil {
		log.Errorf("Init read config error %v", err)
		os.Exit(isolationFailureStatus)
	}
	if config.Debug {
		log.SetLevel(log.DebugLevel)
		// Under a PID namespace this prints 1: we are that
		// namespace's init.
		log.Debugf("pid inside namespace: %d", os.Getpid())
	}
	if config.Rootfs != "" {
		if err := pivotRoot(config.Rootfs); err != nil {
			log.Errorf("Switch rootfs %s error %v", config.Rootfs, err)
			os.Exit(isolationFailureStatus)
		}
		if config.Debug {
			log.Debugf("pivoted into %s", config.Rootfs)
		}
		if err := mountProc(); err != nil {
			log.Errorf("Mount proc error %v", err)
			os.Exit(isolationFailureStatus)
		}
	}
	envp := config.Env
	if envp == nil {
		envp = os.Environ()
	}
	if err := syscall.Exec(config.Program, config.Argv, envp); err != nil {
		log.Errorf("Exec %s error %v", config.Program, err)
		os.Exit(execFailureStatus)
	}
	return nil
}
