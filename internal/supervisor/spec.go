package supervisor

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/loykin/warden/internal/logger"
)

// DefaultPort is the port handed to the worker when none is configured.
const DefaultPort = 8004

// Spec describes the single worker owned by the supervisor.
// Port, EnvFiles and Log are passed through to the worker unmodified in
// meaning; the supervisor only resolves where output goes and which
// environment the worker starts with.
type Spec struct {
	Name     string        `json:"name" mapstructure:"name"`
	Command  string        `json:"command" mapstructure:"command"`
	WorkDir  string        `json:"work_dir" mapstructure:"workdir"`
	Port     int           `json:"port" mapstructure:"port"`
	Env      []string      `json:"env" mapstructure:"env"`
	EnvFiles []string      `json:"env_files" mapstructure:"env_files"`
	UseOSEnv bool          `json:"use_os_env" mapstructure:"use_os_env"`
	Marker   string        `json:"marker" mapstructure:"marker"`
	Log      logger.Config `json:"log" mapstructure:"log"`
}

// ResolvedPort returns the configured port or DefaultPort.
func (s *Spec) ResolvedPort() int {
	if s.Port > 0 {
		return s.Port
	}
	return DefaultPort
}

// BuildCommand constructs an *exec.Cmd for the spec's command with ${PORT}
// already substituted. It avoids invoking a shell when not necessary, and it
// respects an explicit shell invocation already present in the command string
// (e.g. "sh -c 'uvicorn app:app'"), avoiding double-wrapping.
func (s *Spec) BuildCommand() *exec.Cmd {
	cmdStr := strings.TrimSpace(s.Command)
	cmdStr = strings.ReplaceAll(cmdStr, "${PORT}", strconv.Itoa(s.ResolvedPort()))
	if cmdStr == "" {
		// #nosec G204
		return exec.Command("/bin/true")
	}
	if _, afterC, ok := parseExplicitShell(cmdStr); ok {
		// Always use absolute shell path to avoid PATH dependency when Env is overridden.
		// #nosec G204
		return exec.Command("/bin/sh", "-c", afterC)
	}
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		// #nosec G204
		return exec.Command("/bin/sh", "-c", cmdStr)
	}
	parts := strings.Fields(cmdStr)
	name := parts[0]
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	// #nosec G204
	return exec.Command(name, args...)
}

// parseExplicitShell detects patterns like "sh -c <ARG>" or "/bin/sh -c <ARG>"
// at the beginning of cmdStr. It returns (shellPath, afterCArg, true) when
// matched, preserving the substring after "-c " verbatim to keep quoting intact.
func parseExplicitShell(cmdStr string) (string, string, bool) {
	trim := strings.TrimLeft(cmdStr, " \t")
	candidates := []string{"sh -c ", "/bin/sh -c ", "/usr/bin/sh -c "}
	for _, p := range candidates {
		if strings.HasPrefix(trim, p) {
			after := trim[len(p):]
			if n := len(after); n >= 2 {
				if (after[0] == '\'' && after[n-1] == '\'') || (after[0] == '"' && after[n-1] == '"') {
					after = after[1 : n-1]
				}
			}
			return strings.Fields(p)[0], after, true
		}
	}
	return "", "", false
}
