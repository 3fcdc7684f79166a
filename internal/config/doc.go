// Package config handles configuration loading, merging and change
// notification for flowcov.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--executable, --show-uncovered, --only-if-appropriate, ...)
//  2. Environment variables (FLOWCOV_*, NO_COLOR), optionally seeded from .env
//  3. YAML config file (.flowcov.yaml searched upward from the working
//     directory, then ~/.config/flowcov/.flowcov.yaml)
//  4. Hardcoded defaults
//
// # Environment Variables
//
//   - FLOWCOV_EXECUTABLE_PATH: explicit checker binary
//   - FLOWCOV_ONLY_IF_APPROPRIATE: "true"/"false"
//   - FLOWCOV_SHOW_UNCOVERED: "true"/"false"
//   - FLOWCOV_HYPERCLICK_PRIORITY: integer
//   - FLOWCOV_TIMEOUT, FLOWCOV_STOP_TIMEOUT: Go durations ("60s")
//   - FLOWCOV_LOG_LEVEL: debug, info, warn, error
//   - FLOWCOV_DEBUG: any non-empty value forces debug logging
//   - NO_COLOR: any non-empty value selects the mono theme
//
// # Change Notification
//
// A Store holds the live Config. Core logic never reads it as ambient state:
// callers take a snapshot with Current and pass it explicitly. Hosts
// Subscribe to react to changes; a change to HyperclickPriority is flagged
// as RestartRequired.
package config
