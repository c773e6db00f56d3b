// Package exitcode provides standardized exit codes for houdini-package-runner
package exitcode

// Exit codes for the CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	FileSystemError = 4
	ToolNotFound    = 9
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case FileSystemError:
		return "File system error"
	case ToolNotFound:
		return "Tool not found"
	default:
		return "Unknown error"
	}
}
