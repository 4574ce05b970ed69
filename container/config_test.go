package container

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&LaunchConfig{}).validate(), ErrNoProgram)
	assert.ErrorIs(t, (&LaunchConfig{Program: "/bin/sh"}).validate(), ErrNoArgv)

	var nilConfig *LaunchConfig
	assert.ErrorIs(t, nilConfig.validate(), ErrNoProgram)

	valid := &LaunchConfig{Program: "/bin/sh", Argv: []string{"sh"}}
	assert.NoError(t, valid.validate())
}

func TestCloneFlags(t *testing.T) {
	config := &LaunchConfig{}
	assert.Zero(t, config.cloneFlags())

	config.Isolation.NewPID = true
	assert.Equal(t, uintptr(syscall.CLONE_NEWPID), config.cloneFlags())

	config.Isolation.NewMount = true
	assert.Equal(t, uintptr(syscall.CLONE_NEWPID|syscall.CLONE_NEWNS), config.cloneFlags())
}

func TestCloneFlagsRootfsImpliesMountNamespace(t *testing.T) {
	config := &LaunchConfig{Rootfs: "/some/rootfs"}
	assert.Equal(t, uintptr(syscall.CLONE_NEWNS), config.cloneFlags())
}
