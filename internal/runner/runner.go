// Package runner executes a runnable line's shell command in a dedicated
// tmux pane, one-shot, grounded on the editor controller's Ctrl+Enter
// runnable-at-cursor action. Each call spawns (or reuses) a detached tmux
// session named for the file and sends the command as keys, the same
// interaction model a developer gets running tmux by hand — output stays
// visible in the terminal multiplexer after the command finishes rather
// than being captured and re-rendered inside the editor.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// SessionName derives a stable tmux session name from the absolute path
// being run, so repeated runs against the same file reuse one pane instead
// of accumulating sessions.
func SessionName(absPath string) string {
	sum := 0
	for _, b := range []byte(absPath) {
		sum = sum*31 + int(b)
	}
	if sum < 0 {
		sum = -sum
	}
	return fmt.Sprintf("red-run-%d", sum)
}

// Run sends cmd to a tmux session dedicated to absPath, creating the
// session first if it does not already exist. It returns once tmux has
// accepted the keys; it does not wait for cmd itself to finish, matching
// the one-shot, fire-and-forget runnable task model.
func Run(ctx context.Context, absPath, cmd string) error {
	session := SessionName(absPath)

	if err := exec.CommandContext(ctx, "tmux", "has-session", "-t", session).Run(); err != nil {
		newSession := exec.CommandContext(ctx, "tmux", "new-session", "-d", "-s", session)
		if err := newSession.Run(); err != nil {
			return fmt.Errorf("runner: creating tmux session %s: %w", session, err)
		}
	}

	sendKeys := exec.CommandContext(ctx, "tmux", "send-keys", "-t", session, cmd, "Enter")
	if err := sendKeys.Run(); err != nil {
		return fmt.Errorf("runner: sending keys to tmux session %s: %w", session, err)
	}
	return nil
}

// Expand substitutes {file} and {test} placeholders in a language's exec /
// exectest template, mirroring the template variables SPEC_FULL.md's
// language config section names.
func Expand(template, file, test string) string {
	r := strings.NewReplacer("{file}", file, "{test}", test)
	return r.Replace(template)
}
