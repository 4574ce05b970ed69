package container

import (
	"os"
	"os/signal"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

var reaperOnce sync.Once

// InitReaper installs process-wide collection of children nobody waits
// for, so a Spawn caller that never blocks does not accumulate
// zombies. Calling it more than once is a safe no-op.
//
// The explicit wait inside Launch targets its own child by pid and is
// not affected by the reaper collecting unrelated terminated children.
func InitReaper() {
	reaperOnce.Do(func() {
		notifications := make(chan os.Signal, 32)
		signal.Notify(notifications, unix.SIGCHLD)
		go func() {
			for range notifications {
				reapChildren()
			}
		}()
	})
}

// reapChildren drains every currently-terminated child without
// blocking and discards the statuses. One SIGCHLD delivery may stand
// for several exits, so it loops until the kernel has nothing pending.
func reapChildren() {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return
		}
		log.Debugf("reaped child %d", pid)
	}
}
