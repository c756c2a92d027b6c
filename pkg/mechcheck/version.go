// Package mechcheck holds build metadata for the mechcheck tool.
package mechcheck

// Version is the release version of mechcheck.
const Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/daslerpc/mech-checker"
