package heartbeat

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nati-dev/nati-console/internal/agents"
)

func TestRunBuild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	log := RunBuild(context.Background(), AppConfig{Name: "web", BuildCommand: "echo compiled"})
	assert.Equal(t, agents.BuildSuccess, log.Status)
	assert.Equal(t, "web", log.ProjectName)
	assert.Equal(t, "compiled\n", log.LogText)
	assert.False(t, log.StartedAt.IsZero())

	log = RunBuild(context.Background(), AppConfig{Name: "web", BuildCommand: "echo broken; exit 3"})
	assert.Equal(t, agents.BuildFailed, log.Status)
	assert.True(t, strings.HasPrefix(log.LogText, "broken\n"))
	assert.Contains(t, log.LogText, "exit status 3")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "abc", tail("abc", 5))
	assert.Equal(t, "cde", tail("abcde", 3))
}

func TestBuildTarget(t *testing.T) {
	apps := []AppConfig{
		{Name: "web", BuildCommand: "npm run build"},
		{Name: "api"},
	}

	app, ok := buildTarget(apps, map[string]any{"target": "web"})
	assert.True(t, ok)
	assert.Equal(t, "web", app.Name)

	_, ok = buildTarget(apps, map[string]any{"target": "api"})
	assert.False(t, ok, "apps without a build command are not built")

	_, ok = buildTarget(apps, map[string]any{})
	assert.False(t, ok)
}
