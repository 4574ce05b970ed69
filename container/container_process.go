package container

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// The config pipe is handed to the child through ExtraFiles. Stdin,
// stdout and stderr occupy fds 0-2, so the first extra file lands on 3.
const childConfigFD = 3

// executionContext owns everything the launcher allocates for one
// launch: the re-exec command and the pipe carrying the serialized
// LaunchConfig into the child. It plays the role the manually sized
// child stack plays in a clone(2)-based launcher: exclusively owned by
// the launcher, released exactly once after the child has been reaped
// or the creation attempt has failed.
type executionContext struct {
	cmd       *exec.Cmd
	readPipe  *os.File
	writePipe *os.File
}

// newExecutionContext builds the child process but does not start it.
// The child is this same binary re-executed as "init" inside the
// requested namespaces; the init command picks the config back up from
// the pipe and execs the target program.
func newExecutionContext(config *LaunchConfig) (*executionContext, error) {
	readPipe, writePipe, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("allocate config pipe: %v", err)
	}
	cmd := exec.Command("/proc/self/exe", "init")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: config.cloneFlags(),
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{readPipe}
	return &executionContext{
		cmd:       cmd,
		readPipe:  readPipe,
		writePipe: writePipe,
	}, nil
}

// release frees the pipe pair. Calling it again is a no-op; both ends
// are nilled out after the first close.
func (ctx *executionContext) release() {
	if ctx == nil {
		return
	}
	if ctx.readPipe != nil {
		ctx.readPipe.Close()
		ctx.readPipe = nil
	}
	if ctx.writePipe != nil {
		ctx.writePipe.Close()
		ctx.writePipe = nil
	}
}

// sendChildConfig hands the launch config to the started child and
// closes the write end so the child's read sees EOF. The child blocks
// on this read before doing anything else.
func (ctx *executionContext) sendChildConfig(config *LaunchConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal launch config: %v", err)
	}
	if _, err := ctx.writePipe.Write(data); err != nil {
		return fmt.Errorf("write launch config: %v", err)
	}
	ctx.writePipe.Close()
	ctx.writePipe = nil
	return nil
}

// readChildConfig is the child-side counterpart of sendChildConfig.
func readChildConfig() (*LaunchConfig, error) {
	pipe := os.NewFile(uintptr(childConfigFD), "config-pipe")
	defer pipe.Close()
	data, err := io.ReadAll(pipe)
	if err != nil {
		return nil, fmt.Errorf("read config pipe: %v", err)
	}
	config := &LaunchConfig{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unmarshal launch config: %v", err)
	}
	if err := config.validate(); err != nil {
		log.Errorf("Init received bad config: %v", err)
		return nil, err
	}
	return config, nil
}
