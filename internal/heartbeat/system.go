package heartbeat

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/nati-dev/nati-console/internal/agents"
)

const (
	probeTimeout   = 500 * time.Millisecond
	versionTimeout = 3 * time.Second
)

// AppConfig is a locally served sub-application to report on.
type AppConfig struct {
	Name         string `mapstructure:"name"`
	Port         int    `mapstructure:"port"`
	URL          string `mapstructure:"url"`
	Dir          string `mapstructure:"dir"`
	BuildCommand string `mapstructure:"build_command"`
}

// CollectSystemInfo samples host metrics. Metrics that cannot be read are
// reported as zero.
func CollectSystemInfo(ctx context.Context) agents.SystemInfo {
	info := agents.SystemInfo{Platform: runtime.GOOS + "/" + runtime.GOARCH}

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		info.CPU = round1(pct[0])
	} else if err != nil {
		slog.Debug("Failed to read CPU usage", "error", err)
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.Memory = round1(vm.UsedPercent)
	} else {
		slog.Debug("Failed to read memory usage", "error", err)
	}
	if du, err := disk.UsageWithContext(ctx, rootPath()); err == nil {
		info.Disk = round1(du.UsedPercent)
	} else {
		slog.Debug("Failed to read disk usage", "error", err)
	}
	if hi, err := host.InfoWithContext(ctx); err == nil {
		info.Uptime = int64(hi.Uptime)
		if hi.Platform != "" {
			info.Platform = strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion)
		}
	} else {
		slog.Debug("Failed to read host info", "error", err)
	}
	return info
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return "C:\\"
	}
	return "/"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ProbeApp reports an app as running when its port accepts TCP connections.
func ProbeApp(ctx context.Context, app AppConfig) agents.RunningApp {
	result := agents.RunningApp{Name: app.Name, Port: app.Port, URL: app.URL, Status: "stopped"}
	if app.Port <= 0 {
		return result
	}
	if result.URL == "" {
		result.URL = fmt.Sprintf("http://localhost:%d", app.Port)
	}

	dialer := net.Dialer{Timeout: probeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(app.Port)))
	if err != nil {
		return result
	}
	_ = conn.Close()
	result.Status = "running"
	return result
}

// ToolVersions runs `<tool> --version` for each tool and keeps the first
// output line. Missing tools are left out.
func ToolVersions(ctx context.Context, tools []string) map[string]string {
	versions := make(map[string]string, len(tools))
	for _, tool := range tools {
		if v, ok := toolVersion(ctx, tool); ok {
			versions[tool] = v
		}
	}
	return versions
}

func toolVersion(ctx context.Context, tool string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	arg := "--version"
	if tool == "go" {
		arg = "version"
	}
	out, err := exec.CommandContext(ctx, tool, arg).Output()
	if err != nil {
		return "", false
	}
	line, _, _ := strings.Cut(string(out), "\n")
	v := strings.TrimSpace(line)
	return v, v != ""
}
