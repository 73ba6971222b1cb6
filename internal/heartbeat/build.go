package heartbeat

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/nati-dev/nati-console/internal/agents"
)

const (
	buildTimeout = 10 * time.Minute
	maxLogBytes  = 64 << 10
)

// RunBuild runs an app's build command through the platform shell and
// returns the outcome. The log keeps the tail of the combined output.
func RunBuild(ctx context.Context, app AppConfig) agents.BuildLog {
	ctx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	started := time.Now()
	cmd := shellCommand(ctx, app.BuildCommand)
	cmd.Dir = app.Dir
	out, err := cmd.CombinedOutput()

	log := agents.BuildLog{
		ProjectName: app.Name,
		Status:      agents.BuildSuccess,
		StartedAt:   started,
		Duration:    time.Since(started),
		LogText:     string(out),
	}
	if err != nil {
		log.Status = agents.BuildFailed
		log.LogText = strings.TrimRight(log.LogText, "\n") + "\n" + err.Error()
	}
	log.LogText = tail(strings.TrimLeft(log.LogText, "\n"), maxLogBytes)
	return log
}

func shellCommand(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	return exec.CommandContext(ctx, "sh", "-c", line)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// buildTarget finds the configured app a build command refers to.
func buildTarget(apps []AppConfig, payload map[string]any) (AppConfig, bool) {
	name, _ := payload["target"].(string)
	if name == "" {
		return AppConfig{}, false
	}
	for _, app := range apps {
		if app.Name == name && app.BuildCommand != "" {
			return app, true
		}
	}
	return AppConfig{}, false
}
