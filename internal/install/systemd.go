package install

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syslogsrv/internal/global"
)

// Type=notify: readiness, reload and stopping are reported over NOTIFY_SOCKET
const serviceUnitTemplate string = `[Unit]
Description=Syslog collector (UDP and TLS ingestion to dated log files)
After=network-online.target
Wants=network-online.target

[Service]
Type=notify-reload
NotifyAccess=main
ExecStart=$executableFilePath serve --config $configFilePath
ReloadSignal=SIGHUP
Restart=on-failure
RestartSec=5s
AmbientCapabilities=CAP_NET_BIND_SERVICE
NoNewPrivileges=yes
ProtectSystem=strict
ReadWritePaths=$logDirPath
PrivateTmp=yes

[Install]
WantedBy=multi-user.target
`

// Substitutes installation paths into the unit template
func renderServiceUnit(binaryPath, configPath, logDir string) (unit string) {
	unit = strings.Replace(serviceUnitTemplate, "$executableFilePath", binaryPath, 1)
	unit = strings.Replace(unit, "$configFilePath", configPath, 1)
	unit = strings.Replace(unit, "$logDirPath", strings.TrimSuffix(logDir, "/"), 1)
	return
}

func installService() (err error) {
	unitName := filepath.Base(global.DefaultServiceUnit)

	err = os.MkdirAll(global.DefaultServiceLogDir, 0750)
	if err != nil {
		err = fmt.Errorf("failed to create log directory: %w", err)
		return
	}

	unitFile := renderServiceUnit(global.DefaultBinaryPath, global.DefaultServiceConfig, global.DefaultServiceLogDir)
	err = os.WriteFile(global.DefaultServiceUnit, []byte(unitFile), 0644)
	if err != nil {
		return
	}

	// Reload for new unit file
	output, err := systemctl("daemon-reload")
	if err != nil {
		err = fmt.Errorf("failed to reload systemd units: %v: %s", err, output)
		return
	}

	// Disabled status is exit code 1
	output, err = systemctl("is-enabled", unitName)
	if err != nil {
		if !strings.Contains(output, "disabled") {
			err = fmt.Errorf("failed to check systemd service enablement status: %v: %s", err, output)
			return
		}
		err = nil
	}

	if strings.ToLower(output) != "enabled" {
		output, err = systemctl("enable", unitName)
		if err != nil {
			err = fmt.Errorf("failed to enable systemd service: %v: %s", err, output)
			return
		}
	}

	fmt.Printf("Successfully installed Systemd service\n")
	fmt.Printf("  IMPORTANT: modify the configuration to your needs and start the service with 'systemctl start %s'\n", unitName)
	return
}

func uninstallService() (err error) {
	unitName := filepath.Base(global.DefaultServiceUnit)

	// Disabled/not-found status is exit code != 0
	output, err := systemctl("is-enabled", unitName)
	if err != nil {
		if !strings.Contains(output, "not-found") && !strings.Contains(output, "disabled") {
			err = fmt.Errorf("failed to check systemd service enablement status: %v: %s", err, output)
			return
		}
		err = nil
	}

	if strings.ToLower(output) == "enabled" {
		output, err = systemctl("disable", unitName)
		if err != nil {
			err = fmt.Errorf("failed to disable systemd service: %v: %s", err, output)
			return
		}
	}

	output, err = systemctl("show", unitName, "--property=ActiveState")
	if err != nil && !strings.Contains(output, "could not be found") {
		err = fmt.Errorf("failed to check systemd service status: %v: %s", err, output)
		return
	}
	err = nil

	if strings.Contains(output, "=active") {
		output, err = systemctl("stop", unitName)
		if err != nil {
			err = fmt.Errorf("failed to stop systemd service: %v: %s", err, output)
			return
		}
	}

	err = os.Remove(global.DefaultServiceUnit)
	if err != nil && !os.IsNotExist(err) {
		return
	}

	output, err = systemctl("daemon-reload")
	if err != nil {
		err = fmt.Errorf("failed to reload systemd units: %v: %s", err, output)
		return
	}

	fmt.Printf("Successfully uninstalled systemd service\n")
	return
}

func systemctl(args ...string) (output string, err error) {
	command := exec.Command("systemctl", args...)
	raw, err := command.CombinedOutput()
	output = strings.TrimSpace(string(raw))
	return
}
