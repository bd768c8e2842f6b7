package driver

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// defaultSystemStats is the conservative fallback for drivers with no
// real sensor access.
var defaultSystemStats = SystemStats{CPU: 5, Memory: 20, Temperature: 45}

// hostSystemStats reads real host CPU/memory/temperature via gopsutil,
// falling back field-by-field to defaultSystemStats on any read
// failure.
func hostSystemStats(ctx context.Context) SystemStats {
	stats := defaultSystemStats

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		stats.CPU = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.Memory = vm.UsedPercent
	}

	if temps, err := host.SensorsTemperaturesWithContext(ctx); err == nil {
		for _, t := range temps {
			if t.Temperature > 0 {
				stats.Temperature = t.Temperature
				break
			}
		}
	}

	return stats
}
