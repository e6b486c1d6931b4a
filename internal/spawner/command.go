// Package spawner builds and runs the child process behind a Job execution.
// It provides two production SubprocessSpawner implementations — a
// pipe-based one (the default) and a pseudo-terminal one — plus a scripted
// test double, matching spec.md §4.2.
package spawner

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/brightloop/acsd/internal/model"
)

// CommandBuilder carries everything needed to start a child process:
// program, arguments, working directory, and environment overlay. It
// mirrors portable_pty::CommandBuilder from the Rust original closely
// enough that the platform-dispatch logic below reads the same way.
type CommandBuilder struct {
	Program string
	Args    []string
	Dir     string
	Env     map[string]string
}

// BuildCommand builds a CommandBuilder from a Job's Execution, following
// platform convention: on POSIX, inline commands run under "sh -c <command>"
// and script files run under "sh <path>"; on Windows, inline commands run
// under "cmd.exe /C <command>", script files run the same way except that
// a ".ps1" extension routes through "powershell.exe -File <path>".
//
// scriptsDir is the {data_dir}/scripts/ root that ExecutionScriptFile paths
// are resolved under.
func BuildCommand(job model.Job, scriptsDir string) CommandBuilder {
	var cb CommandBuilder

	switch job.Execution.Kind {
	case model.ExecutionShellCommand:
		cb = buildShellCommand(job.Execution.Value)
	case model.ExecutionScriptFile:
		path := job.Execution.Value
		if !filepath.IsAbs(path) {
			path = filepath.Join(scriptsDir, path)
		}
		cb = buildScriptCommand(path)
	}

	if job.WorkingDir != nil {
		cb.Dir = *job.WorkingDir
	}
	if job.EnvVars != nil {
		cb.Env = make(map[string]string, len(job.EnvVars))
		for k, v := range job.EnvVars {
			cb.Env[k] = v
		}
	}

	return cb
}

func isWindows() bool { return runtime.GOOS == "windows" }

func buildShellCommand(command string) CommandBuilder {
	if runtime.GOOS == "windows" {
		return CommandBuilder{Program: "cmd.exe", Args: []string{"/C", command}}
	}
	return CommandBuilder{Program: "/bin/sh", Args: []string{"-c", command}}
}

func buildScriptCommand(path string) CommandBuilder {
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".ps1" {
			return CommandBuilder{Program: "powershell.exe", Args: []string{"-File", path}}
		}
		return CommandBuilder{Program: "cmd.exe", Args: []string{"/C", path}}
	}
	return CommandBuilder{Program: "/bin/sh", Args: []string{path}}
}
