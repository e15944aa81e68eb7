package services

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"spacegate/internal/models"

	"github.com/shirou/gopsutil/v3/disk"
)

const GB = 1024 * 1024 * 1024

// UsageFunc queries the OS for disk usage of the filesystem holding path
type UsageFunc func(ctx context.Context, path string) (*disk.UsageStat, error)

// DefaultPath returns the filesystem root for the given GOOS value
func DefaultPath(goos string) string {
	if goos == "windows" {
		return `C:\`
	}
	return "/"
}

// ResolveDefaultPath returns the filesystem root of the running OS
func ResolveDefaultPath() string {
	return DefaultPath(runtime.GOOS)
}

// RoundGB converts bytes to gigabytes rounded to two decimal places.
// Exact ties round half to even on the binary value, so 33.125 becomes 33.12.
func RoundGB(bytes uint64) float64 {
	gb, _ := strconv.ParseFloat(strconv.FormatFloat(float64(bytes)/GB, 'f', 2, 64), 64)
	return gb
}

// FormatGB renders a rounded GB value the way it is printed in status lines:
// shortest form, but always with a fractional digit (50.0, 12.34).
func FormatGB(gb float64) string {
	s := strconv.FormatFloat(gb, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// GetDiskUsage returns disk usage for a specific path
func GetDiskUsage(ctx context.Context, path string) (*models.DiskStatus, error) {
	return getDiskUsage(ctx, disk.UsageWithContext, path)
}

func getDiskUsage(ctx context.Context, usage UsageFunc, path string) (*models.DiskStatus, error) {
	if path == "" {
		path = ResolveDefaultPath()
	}
	if usage == nil {
		usage = disk.UsageWithContext
	}

	stat, err := usage(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage for %s: %w", path, err)
	}

	return &models.DiskStatus{
		Path:       path,
		TotalBytes: stat.Total,
		UsedBytes:  stat.Used,
		FreeBytes:  stat.Free,
		FreeGB:     RoundGB(stat.Free),
		Filesystem: stat.Fstype,
	}, nil
}

// GetFreeGB returns the free space on path in GB, rounded to two decimals.
// Free is what the calling process may use, not counting root reserves.
func GetFreeGB(ctx context.Context, path string) (float64, error) {
	status, err := GetDiskUsage(ctx, path)
	if err != nil {
		return 0, err
	}
	return status.FreeGB, nil
}
