// Package sysmem implements the MemoryProbe port: general memory from the
// kernel, the accelerated pool from nvidia-smi when a GPU is present.
package sysmem

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

type Probe struct {
	nvidiaSMI string
}

func New(nvidiaSMIPath string) *Probe {
	if nvidiaSMIPath == "" {
		nvidiaSMIPath = "nvidia-smi"
	}
	return &Probe{nvidiaSMI: nvidiaSMIPath}
}

func (p *Probe) FreeGeneral() uint64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Freeram) * uint64(info.Unit)
}

// FreeAccelerated queries the first GPU's free memory. Any failure (no
// binary, no device) reports the pool as absent rather than erroring: the
// batch sizer then budgets everything against general memory.
func (p *Probe) FreeAccelerated(ctx context.Context) (uint64, bool) {
	out, err := exec.CommandContext(ctx, p.nvidiaSMI,
		"--query-gpu=memory.free",
		"--format=csv,noheader,nounits",
	).Output()
	if err != nil {
		return 0, false
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	mib, err := strconv.ParseUint(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, false
	}
	return mib << 20, true
}
