package render

import (
	"fmt"
	"os/exec"
	"runtime"
)

// startCmd builds the launcher process; replaced in tests.
var startCmd = exec.Command

// OpenBrowser asks the desktop to open path. It does not wait for the viewer.
func OpenBrowser(path string) error {
	name, args := browserCommand(runtime.GOOS, path)
	cmd := startCmd(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch viewer: %w", err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func browserCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}
