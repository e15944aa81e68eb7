package models

// DiskStatus represents disk usage for the checked path
type DiskStatus struct {
	Path       string  `json:"path"`
	TotalBytes uint64  `json:"total_bytes"`
	UsedBytes  uint64  `json:"used_bytes"`
	FreeBytes  uint64  `json:"free_bytes"`
	FreeGB     float64 `json:"free_gb"`
	Filesystem string  `json:"filesystem"`
}

// SpaceCheck is the outcome of comparing free space against the threshold
type SpaceCheck struct {
	Path       string  `json:"path"`
	RequiredGB int     `json:"required_gb"`
	FreeGB     float64 `json:"free_gb"`
	Sufficient bool    `json:"sufficient"`
}
