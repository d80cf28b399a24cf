package metrics

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a point-in-time reading of this process.
type Usage struct {
	RSSBytes   uint64
	CPUPercent float64
}

// RSSMegabytes returns the resident set size in MB.
func (u Usage) RSSMegabytes() float64 {
	return float64(u.RSSBytes) / 1024 / 1024
}

// ProcessUsage reads resident memory and CPU usage of the current process.
func ProcessUsage() (Usage, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Usage{}, err
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return Usage{}, err
	}
	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return Usage{}, err
	}
	return Usage{RSSBytes: mem.RSS, CPUPercent: cpuPercent}, nil
}
