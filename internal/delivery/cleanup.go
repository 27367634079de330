package delivery

import "os"

// cleanupAttempt removes the derived files of one send attempt: the
// compressed copy and the sidecar. The original persisted image is never
// removed. Deletion is best-effort; errors are swallowed.
func cleanupAttempt(currentPath, originalPath, sidecarPath string) {
	for _, p := range []string{currentPath, sidecarPath} {
		if p == "" || p == originalPath {
			continue
		}
		_ = os.Remove(p)
	}
}
