package spawner

import (
	"context"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// PTYSpawner runs the child under a pseudo-terminal, using
// github.com/creack/pty. Some OS pty subsystems do not reliably propagate
// master-close as reader-EOF. It is never the default: internal/lifecycle
// always builds a PipeSpawner, and Job has no field that selects a pty.
type PTYSpawner struct{}

// NewPTYSpawner returns a PTYSpawner.
func NewPTYSpawner() PTYSpawner { return PTYSpawner{} }

func (PTYSpawner) Spawn(ctx context.Context, cb CommandBuilder, rows, cols int) (ProcessHandle, error) {
	cmd := exec.Command(cb.Program, cb.Args...)
	if cb.Dir != "" {
		cmd.Dir = cb.Dir
	}
	if len(cb.Env) > 0 {
		env := os.Environ()
		for k, v := range cb.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, err
	}

	h := &ptyHandle{cmd: cmd, master: master, done: make(chan struct{})}
	go h.waitAndClose()
	return h, nil
}

type ptyHandle struct {
	cmd     *exec.Cmd
	master  *os.File
	done    chan struct{}
	waitErr error
}

// waitAndClose is the helper thread described in spec.md §4.2: it waits on
// the child and, once it exits, drops the master to unblock any pending
// read.
func (h *ptyHandle) waitAndClose() {
	h.waitErr = h.cmd.Wait()
	h.master.Close()
	close(h.done)
}

func (h *ptyHandle) Read(buf []byte) (int, error) {
	return h.master.Read(buf)
}

func (h *ptyHandle) Wait() (ExitStatus, error) {
	<-h.done
	code := 0
	if h.cmd.ProcessState != nil {
		code = h.cmd.ProcessState.ExitCode()
	}
	return ExitStatus{ExitCode: code}, nil
}

func (h *ptyHandle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}
