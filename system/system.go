// Package system reports host resource usage for health checks and the CLI.
package system

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info is a point-in-time snapshot of host usage.
type Info struct {
	CPUCount          int     `json:"cpu_count"`
	CPUUsedPercent    float64 `json:"cpu_used_percent"`
	MemoryTotalBytes  uint64  `json:"memory_total_bytes"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	GoVersion         string  `json:"go_version"`
	Goroutines        int     `json:"goroutines"`
}

// GetCPUUsage returns the current CPU usage as a percentage
func GetCPUUsage() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percentages) == 0 {
		return 0, fmt.Errorf("could not get CPU usage")
	}
	return percentages[0], nil
}

// Snapshot collects CPU and memory usage. Fields that cannot be read stay zero
// and the first error is returned alongside the partial snapshot.
func Snapshot() (Info, error) {
	info := Info{
		CPUCount:   runtime.NumCPU(),
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	}
	var firstErr error

	if pct, err := GetCPUUsage(); err != nil {
		firstErr = err
	} else {
		info.CPUUsedPercent = pct
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		info.MemoryTotalBytes = vm.Total
		info.MemoryUsedPercent = vm.UsedPercent
	}
	return info, firstErr
}
