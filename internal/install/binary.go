package install

import (
	"fmt"
	"os"
	"path/filepath"
	"syslogsrv/internal/global"
)

func installBinary() (err error) {
	selfPath, err := os.Executable()
	if err != nil {
		return
	}
	selfPath, err = filepath.EvalSymlinks(selfPath)
	if err != nil {
		return
	}

	// Reinstall from the installed copy
	if selfPath == global.DefaultBinaryPath {
		fmt.Printf("Binary already installed at '%s'\n", global.DefaultBinaryPath)
		return
	}

	err = os.Rename(selfPath, global.DefaultBinaryPath)
	if err != nil {
		err = fmt.Errorf("failed to move: %w", err)
		return
	}

	fmt.Printf("Successfully installed binary to '%s'\n", global.DefaultBinaryPath)
	return
}

func uninstallBinary() (err error) {
	err = os.Remove(global.DefaultBinaryPath)
	if err != nil && !os.IsNotExist(err) {
		return
	}
	err = nil

	fmt.Printf("Successfully removed binary from '%s'\n", global.DefaultBinaryPath)
	return
}
