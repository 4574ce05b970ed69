package container

import (
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The launcher re-executes the current binary as "init". Under go test
// the current binary is the test binary, so TestMain takes over the
// init role before the test framework gets a chance to run.
func TestMain(m *testing.M) {
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := RunInit(); err != nil {
			os.Exit(1)
		}
		return
	}
	os.Exit(m.Run())
}

func shConfig(script string) *LaunchConfig {
	return &LaunchConfig{
		Program: "/bin/sh",
		Argv:    []string{"sh", "-c", script},
	}
}

func requireRoot(t *testing.T) {
	t.Helper()
	if os.Getuid() != 0 {
		t.Skip("requires root")
	}
}

func TestLaunchExitStatus(t *testing.T) {
	result, err := Launch(shConfig("exit 42"))
	defer result.Release()
	require.NoError(t, err)
	assert.Greater(t, result.ChildPID, 0)
	assert.Equal(t, Exited{Status: 42}, result.Outcome)
	assert.Equal(t, 42, result.Outcome.ExitCode())
}

func TestLaunchSignalDeath(t *testing.T) {
	result, err := Launch(shConfig("kill -TERM $$"))
	defer result.Release()
	require.NoError(t, err)
	require.IsType(t, Signaled{}, result.Outcome)
	assert.Equal(t, syscall.SIGTERM, result.Outcome.(Signaled).Signal)
	assert.Equal(t, 143, result.Outcome.ExitCode())
}

func TestLaunchMissingProgram(t *testing.T) {
	config := &LaunchConfig{
		Program: "/no/such/binary",
		Argv:    []string{"/no/such/binary"},
	}
	result, err := Launch(config)
	defer result.Release()
	require.NoError(t, err)
	// The child itself was created fine; exec failing inside it is a
	// clean child exit, not a launcher failure.
	assert.Greater(t, result.ChildPID, 0)
	assert.Equal(t, Exited{Status: 127}, result.Outcome)
}

func TestLaunchEnvOverride(t *testing.T) {
	config := shConfig(`test "$MINIBOX_TEST_FLAG" = set`)
	config.Env = append(os.Environ(), "MINIBOX_TEST_FLAG=set")
	result, err := Launch(config)
	defer result.Release()
	require.NoError(t, err)
	assert.Equal(t, Exited{Status: 0}, result.Outcome)
}

func TestLaunchRejectsMissingProgramField(t *testing.T) {
	result, err := Launch(&LaunchConfig{Argv: []string{"sh"}})
	assert.ErrorIs(t, err, ErrNoProgram)
	assert.Equal(t, -1, result.ChildPID)
	assert.Nil(t, result.Outcome)
	result.Release()
}

func TestLaunchRejectsMissingArgv(t *testing.T) {
	result, err := Launch(&LaunchConfig{Program: "/bin/sh"})
	assert.ErrorIs(t, err, ErrNoArgv)
	assert.Equal(t, -1, result.ChildPID)
	result.Release()
}

func TestReleaseIdempotent(t *testing.T) {
	result, err := Launch(shConfig("exit 0"))
	require.NoError(t, err)
	result.Release()
	result.Release()

	var nilResult *LaunchResult
	nilResult.Release()
	(&LaunchResult{ChildPID: -1}).Release()
}

func TestNoIsolationChildKeepsHostPID(t *testing.T) {
	// Without a PID namespace the child sees an ordinary host pid:
	// neither 1 nor the parent's own.
	script := fmt.Sprintf(`test $$ -ne 1 && test $$ -ne %d`, os.Getpid())
	result, err := Launch(shConfig(script))
	defer result.Release()
	require.NoError(t, err)
	assert.Equal(t, Exited{Status: 0}, result.Outcome)
}

func TestPIDNamespaceChildIsPIDOne(t *testing.T) {
	requireRoot(t)
	config := shConfig(`test $$ -eq 1`)
	config.Isolation.NewPID = true
	result, err := Launch(config)
	defer result.Release()
	require.NoError(t, err)
	assert.Equal(t, Exited{Status: 0}, result.Outcome)
}
