package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/outfit-dev/outfit/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/outfit-dev/outfit/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/outfit-dev/outfit/internal/version.Date={{.Date}}
)
