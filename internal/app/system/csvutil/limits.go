// internal/app/system/csvutil/limits.go
package csvutil

// Upload size and row limits for CSV processing.
const (
	MaxUploadSize = 2 << 20 // 2 MB
	MaxRows       = 2000
)
