package main

import (
	"os"

	"github.com/minibox-run/minibox/container"

	log "github.com/sirupsen/logrus"
)

// Run launches the configured child and translates its fate into the
// exit code handed back to the shell: the child's status verbatim,
// 128+signal on a signal death, 1 when no child could be created.
func Run(config *container.LaunchConfig, detach bool) int {
	if detach {
		// Nobody waits for a detached child; the reaper collects it.
		container.InitReaper()
		result, err := container.Spawn(config)
		defer result.Release()
		if err != nil {
			log.Errorf("Spawn error %v", err)
			return 1
		}
		log.Infof("child pid %d", result.ChildPID)
		return 0
	}

	result, err := container.Launch(config)
	defer result.Release()
	if err != nil {
		if result.ChildPID >= 0 {
			log.Errorf("Wait for child %d error %v", result.ChildPID, err)
		} else {
			log.Errorf("Launch error %v", err)
		}
		return 1
	}
	if signaled, ok := result.Outcome.(container.Signaled); ok {
		log.Errorf("Child killed by signal %d", int(signaled.Signal))
	}
	return result.Outcome.ExitCode()
}

// mergeEnv appends the overrides after the inherited environment, in
// order and without deduplication; for duplicate keys the usual execve
// last-match semantics apply. A nil return means "inherit unchanged".
func mergeEnv(overrides []string) []string {
	if len(overrides) == 0 {
		return nil
	}
	return append(os.Environ(), overrides...)
}
