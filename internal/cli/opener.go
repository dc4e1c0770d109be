package cli

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenFile opens path with the host's default application and does not wait
// for it to exit.
func OpenFile(path string) error {
	name, args, err := openCommand(runtime.GOOS, path)
	if err != nil {
		return err
	}

	if err := exec.Command(name, args...).Start(); err != nil { //nolint:gosec
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}

// openCommand returns the command that opens path on goos.
func openCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}, nil
	case "darwin":
		return "open", []string{path}, nil
	default:
		return "", nil, fmt.Errorf("opening files is not supported on %s", goos)
	}
}
