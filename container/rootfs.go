package container

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// The old root is parked here during pivot_root and detached right
// after.
const putOld = "old_root"

// pivotRoot replaces this process's root filesystem with rootfs. It
// must only run inside a fresh mount namespace, before exec. The call
// order is load-bearing:
//
//  1. make the whole mount tree recursively private, so nothing we do
//     below propagates out; systemd mounts / shared by default, which
//     would otherwise leak every event to the host namespace,
//  2. bind mount rootfs onto itself so pivot_root accepts it as a
//     mount point,
//  3. re-apply private propagation to the bind mount in a separate
//     call, since mount(2) ignores propagation flags combined with
//     MS_BIND,
//  4. pivot, with the outgoing root parked in old_root,
//  5. lazily detach the old root so lingering references drain on
//     their own.
//
// No rollback on failure: the mount namespace is process-local and the
// kernel discards it wholesale when the child dies.
func pivotRoot(rootfs string) error {
	if rootfs == "" {
		return nil
	}
	root, err := filepath.Abs(rootfs)
	if err != nil {
		return fmt.Errorf("resolve rootfs %s: %v", rootfs, err)
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("resolve rootfs %s: %v", rootfs, err)
	}
	if err := unix.Mount("", "/", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("make / rprivate: %v", err)
	}
	if err := unix.Mount(root, root, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind mount %s onto itself: %v", root, err)
	}
	if err := unix.Mount("", root, "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("make %s rprivate: %v", root, err)
	}
	if err := os.Chdir(root); err != nil {
		return fmt.Errorf("chdir %s: %v", root, err)
	}
	if err := os.Mkdir(putOld, 0700); err != nil && !os.IsExist(err) {
		return fmt.Errorf("mkdir %s: %v", putOld, err)
	}
	if err := unix.PivotRoot(".", putOld); err != nil {
		return fmt.Errorf("pivot_root into %s: %v", root, err)
	}
	// The working directory is stale after the pivot.
	if err := os.Chdir("/"); err != nil {
		return fmt.Errorf("chdir /: %v", err)
	}
	if err := unix.Unmount("/"+putOld, unix.MNT_DETACH); err != nil {
		return fmt.Errorf("detach old root: %v", err)
	}
	// Best effort: isolation is already complete, a leftover empty
	// directory is cosmetic.
	if err := os.Remove("/" + putOld); err != nil {
		log.Debugf("remove /%s: %v", putOld, err)
	}
	return nil
}

// mountProc mounts a fresh proc at /proc after a successful pivot. A
// rootfs without a /proc directory is tolerated silently, some minimal
// trees omit it; an actual mount failure is fatal, a container without
// a working /proc is broken.
func mountProc() error {
	info, err := os.Stat("/proc")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat /proc: %v", err)
	}
	if !info.IsDir() {
		return nil
	}
	defaultMountFlags := unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV
	if err := unix.Mount("proc", "/proc", "proc", uintptr(defaultMountFlags), ""); err != nil {
		return fmt.Errorf("mount proc on /proc: %v", err)
	}
	return nil
}
