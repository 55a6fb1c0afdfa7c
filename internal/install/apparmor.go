package install

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syslogsrv/internal/global"
)

const appArmorProfileTemplate string = `abi <abi/3.0>,
include <tunables/global>

profile syslogsrv $executableFilePath flags=(enforce) {
  include <abstractions/base>
  include <abstractions/nameservice>

  capability net_bind_service,

  network inet dgram,
  network inet6 dgram,
  network inet stream,
  network inet6 stream,
  network unix dgram,

  $executableFilePath mr,
  $configurationDirPath/ r,
  $configurationDirPath/** r,
  $logDirPath/ rw,
  $logDirPath/** rw,

  /run/systemd/notify w,
  @{PROC}/sys/net/core/somaxconn r,
  /sys/kernel/mm/transparent_hugepage/hpage_pmd_size r,
}
`

// Substitutes installation paths into the profile template
func renderAAProfile(binaryPath, configDir, logDir string) (profile string) {
	profile = strings.ReplaceAll(appArmorProfileTemplate, "$executableFilePath", binaryPath)
	profile = strings.ReplaceAll(profile, "$configurationDirPath", strings.TrimSuffix(configDir, "/"))
	profile = strings.ReplaceAll(profile, "$logDirPath", strings.TrimSuffix(logDir, "/"))
	return
}

// If apparmor LSM is available on this system, install and load the profile
func installAAProfile() (err error) {
	const appArmorProfilePath string = "/etc/apparmor.d/" + global.DefaultAAProfName

	supported, err := appArmorSupported()
	if err != nil {
		return
	}
	if !supported {
		fmt.Printf("AppArmor not supported by this system\n")
		return
	}

	profile := renderAAProfile(global.DefaultBinaryPath, global.DefaultConfigDir, global.DefaultServiceLogDir)
	err = os.WriteFile(appArmorProfilePath, []byte(profile), 0644)
	if err != nil {
		err = fmt.Errorf("failed to write apparmor profile: %w", err)
		return
	}

	command := exec.Command("apparmor_parser", "-r", appArmorProfilePath)
	output, err := command.CombinedOutput()
	if err != nil {
		err = fmt.Errorf("failed to reload apparmor profile: %v: %s", err, string(output))
		return
	}

	fmt.Printf("Successfully installed AppArmor Profile\n")
	return
}

func uninstallAAProfile() (err error) {
	const appArmorProfilePath string = "/etc/apparmor.d/" + global.DefaultAAProfName

	supported, err := appArmorSupported()
	if err != nil || !supported {
		return
	}

	// Warn about confined apparmor profile for uninstall
	if strings.Contains(os.Args[0], global.DefaultBinaryPath) {
		fmt.Printf("WARNING: uninstall will fail if calling this binary from within the apparmor profile\n")
		fmt.Printf("  Run this command and retry the uninstall: 'apparmor_parser -R %s'\n", appArmorProfilePath)
	}

	command := exec.Command("apparmor_parser", "-R", appArmorProfilePath)
	output, err := command.CombinedOutput()
	if err != nil {
		if !strings.Contains(string(output), "not found, skipping") {
			err = fmt.Errorf("failed to disable apparmor profile: %v: %s", err, string(output))
			return
		}
		err = nil
	}

	err = os.Remove(appArmorProfilePath)
	if err != nil && !os.IsNotExist(err) {
		err = fmt.Errorf("failed to remove apparmor profile: %w", err)
		return
	}
	err = nil

	fmt.Printf("Successfully uninstalled AppArmor Profile\n")
	return
}

func appArmorSupported() (supported bool, err error) {
	_, err = os.Stat("/sys/kernel/security/apparmor/profiles")
	if os.IsNotExist(err) {
		err = nil
		return
	} else if err != nil {
		err = fmt.Errorf("unable to check if AppArmor is supported by this system: %w", err)
		return
	}
	supported = true
	return
}
