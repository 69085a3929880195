package version

import (
	"runtime"
	"time"
)

// Name is reported in logs and in the healthz payload.
const Name = "automator"

var (
	Version   = "dev"                           // ex: v1.7.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()
)
