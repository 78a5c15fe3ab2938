package supervisor

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"

	"github.com/pueued/pueue-go/internal/task"
)

// allowedEnvVars are inherited from the daemon's own environment for every
// spawned task, before the task's own Envs are applied on top.
var allowedEnvVars = []string{"PATH", "HOME", "USER", "SHELL", "LANG"}

func buildEnv(taskEnvs map[string]string) []string {
	env := make([]string, 0, len(allowedEnvVars)+len(taskEnvs))
	for _, name := range allowedEnvVars {
		if v, ok := os.LookupEnv(name); ok {
			env = append(env, name+"="+v)
		}
	}
	for k, v := range taskEnvs {
		env = append(env, k+"="+v)
	}
	return env
}

// process is a single supervised child, spawned as the leader of its own
// process group so that a group signal reaches every descendant it forks.
type process struct {
	cmd           *exec.Cmd
	pid           int
	logFile       *os.File
	stdin         io.WriteCloser
	killRequested atomic.Bool
}

// spawn compiles command as `sh -c <command>`, matching Pueue's own
// shell-wrapping so pipes/redirects/subshells in submitted commands work,
// and starts it as the leader of a new process group.
func spawn(command, dir string, envs map[string]string, logPath string) (*process, error) {
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = buildEnv(envs)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		logFile.Close()
		return nil, err
	}

	return &process{cmd: cmd, pid: cmd.Process.Pid, logFile: logFile, stdin: stdin}, nil
}

// signal delivers sig either to the whole process group (toGroup) or to
// just the direct child. An already-exited target is treated as success,
// matching Pueue's own kill_child semantics.
func (p *process) signal(sig syscall.Signal, toGroup bool) error {
	target := p.pid
	if toGroup {
		target = -p.pid
	}
	p.killRequested.Store(true)
	err := syscall.Kill(target, sig)
	if err == syscall.ESRCH {
		return nil
	}
	return err
}

// alive performs a zero-signal liveness probe.
func (p *process) alive() bool {
	return syscall.Kill(p.pid, syscall.Signal(0)) == nil
}

// writeStdin sends data to the child's stdin pipe, opened when the
// process was spawned.
func (p *process) writeStdin(data []byte) error {
	if p.stdin == nil {
		return fmt.Errorf("task has no open stdin pipe")
	}
	_, err := p.stdin.Write(data)
	return err
}

// wait blocks until the child exits and classifies the outcome.
func (p *process) wait() task.Result {
	defer p.logFile.Close()

	err := p.cmd.Wait()
	state := p.cmd.ProcessState

	if err == nil {
		return task.SuccessResult()
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return task.ErroredResult(err.Error())
	}
	_ = exitErr

	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		if p.killRequested.Load() {
			return task.KilledResult()
		}
		return task.ErroredResult("terminated by signal: " + status.Signal().String())
	}

	return task.FailedResult(state.ExitCode())
}
