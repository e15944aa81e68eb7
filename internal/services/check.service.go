package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"spacegate/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrInsufficientSpace is returned by Run when free space is below the threshold
var ErrInsufficientSpace = errors.New("insufficient free disk space")

// Checker compares free space on Path against RequiredGB
type Checker struct {
	Path       string
	RequiredGB int
	// Usage overrides the OS query, nil means gopsutil
	Usage UsageFunc
}

// NewChecker creates a checker for path, falling back to the OS root
func NewChecker(path string, requiredGB int) *Checker {
	if path == "" {
		path = ResolveDefaultPath()
	}
	return &Checker{Path: path, RequiredGB: requiredGB}
}

// DiskStatus returns the raw usage record for the checker's path
func (c *Checker) DiskStatus(ctx context.Context) (*models.DiskStatus, error) {
	return getDiskUsage(ctx, c.Usage, c.Path)
}

// Check queries the filesystem once and evaluates the threshold
func (c *Checker) Check(ctx context.Context) (*models.SpaceCheck, error) {
	status, err := c.DiskStatus(ctx)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("[SPACE] %s: total=%d used=%d free=%d (%sGB) fs=%s",
		status.Path, status.TotalBytes, status.UsedBytes, status.FreeBytes, FormatGB(status.FreeGB), status.Filesystem)

	return &models.SpaceCheck{
		Path:       status.Path,
		RequiredGB: c.RequiredGB,
		FreeGB:     status.FreeGB,
		Sufficient: !(status.FreeGB < float64(c.RequiredGB)),
	}, nil
}

// Run performs the gate check and writes the status lines to out.
// It returns ErrInsufficientSpace on shortfall and the OS error if the
// query fails.
func (c *Checker) Run(ctx context.Context, out io.Writer) error {
	fmt.Fprintf(out, "Checking disk space, required: %dGB\n", c.RequiredGB)

	result, err := c.Check(ctx)
	if err != nil {
		return err
	}

	if !result.Sufficient {
		fmt.Fprintf(out, "Not enough free disk space (%s/%dGB.)\n", FormatGB(result.FreeGB), result.RequiredGB)
		return ErrInsufficientSpace
	}
	return nil
}
