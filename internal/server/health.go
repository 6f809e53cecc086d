package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	maxDiskUsedPercent = 90.0
	minAvailableMemory = 100 << 20
)

// DiskCheck fails when the root filesystem is over 90% full.
func DiskCheck(ctx context.Context) error {
	usage, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return err
	}

	if usage.UsedPercent > maxDiskUsedPercent {
		return fmt.Errorf("disk is %.1f%% full", usage.UsedPercent)
	}

	return nil
}

// MemoryCheck fails when less than 100 MB of memory is available.
func MemoryCheck(ctx context.Context) error {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return err
	}

	if vm.Available < minAvailableMemory {
		return fmt.Errorf("only %d bytes of memory available", vm.Available)
	}

	return nil
}

func (s *Server) healthCheck(c *gin.Context) {
	report := make(map[string]string, len(s.checks))
	status := http.StatusOK

	for name, check := range s.checks {
		if err := check(c.Request.Context()); err != nil {
			report[name] = err.Error()
			status = http.StatusInternalServerError
			continue
		}
		report[name] = "working"
	}

	c.JSON(status, report)
}
