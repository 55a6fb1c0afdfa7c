package install

import (
	"fmt"
	"os"
	"syslogsrv/internal/config"
	"syslogsrv/internal/global"

	"golang.org/x/term"
)

// Service layout: settings and certificate under /etc, logs under /var/log
func installConfig() (err error) {
	err = os.MkdirAll(global.DefaultConfigDir, 0755)
	if err != nil {
		err = fmt.Errorf("failed to create configuration directory: %w", err)
		return
	}

	_, err = os.Stat(global.DefaultServiceCert)
	if os.IsNotExist(err) {
		hostname, _ := os.Hostname()
		err = CreateCertificate(global.DefaultServiceCert, "", []string{hostname, "localhost"})
		if err != nil {
			return
		}
	} else if err != nil {
		err = fmt.Errorf("failed checking certificate file existence: %w", err)
		return
	}

	settings := config.Defaults()
	settings.CertificatePath = global.DefaultServiceCert
	settings.LogFileDirectory = global.DefaultServiceLogDir

	written, err := writeTemplate(global.DefaultServiceConfig, settings)
	if err != nil || !written {
		return
	}
	fmt.Printf("Successfully wrote template configuration file to '%s'\n", global.DefaultServiceConfig)
	return
}

func uninstallConfig() (err error) {
	err = os.RemoveAll(global.DefaultConfigDir)
	if err != nil && !os.IsNotExist(err) {
		return
	}
	err = nil

	fmt.Printf("Successfully removed configuration directory '%s'\n", global.DefaultConfigDir)
	return
}

// Writes a default settings file to path.
// With askPassword on a terminal, the certificate password is read without echo.
func CreateTemplateConfig(path string, askPassword bool) (err error) {
	if path == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	settings := config.Defaults()
	if askPassword {
		settings.CertificatePassword, err = readPassword("Certificate password (empty for none): ")
		if err != nil {
			return
		}
	}

	written, err := writeTemplate(path, settings)
	if err != nil || !written {
		return
	}
	fmt.Printf("Successfully wrote template configuration file to '%s'\n", path)
	return
}

// Existing files are only replaced after an interactive confirmation
func writeTemplate(path string, settings config.Settings) (written bool, err error) {
	_, err = os.Stat(path)
	if err == nil {
		// No terminal - no overwrite
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("Existing configuration file present, not overwriting\n")
			return
		}

		prompt := fmt.Sprintf("Configuration file already exists at '%s'. Are you SURE you want to overwrite it? (yes/no): ", path)
		if !confirm(prompt) {
			fmt.Printf("Not overwriting configuration file\n")
			return
		}
	} else if !os.IsNotExist(err) {
		err = fmt.Errorf("failed checking configuration file existence: %w", err)
		return
	}

	err = config.WriteFile(path, settings)
	if err != nil {
		return
	}
	written = true
	return
}

func readPassword(prompt string) (password string, err error) {
	stdin := int(os.Stdin.Fd())
	if !term.IsTerminal(stdin) {
		err = fmt.Errorf("password prompt requires a terminal")
		return
	}

	fmt.Print(prompt)
	raw, err := term.ReadPassword(stdin)
	fmt.Println()
	if err != nil {
		err = fmt.Errorf("failed reading password: %w", err)
		return
	}
	password = string(raw)
	return
}
