package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syslogsrv/internal/global"
	"syslogsrv/internal/install"
)

// Setup/installation options
func SetupMode(cliOpts *global.CommandSet, commandname string, args []string) (exitCode int) {
	var templateConfPath string
	var askPassword bool
	var newCert bool
	var certOut string
	var keyOut string
	var hosts string
	var installService bool
	var uninstallService bool

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.StringVar(&templateConfPath, "config-template", "", "Create new template settings file at this path")
	commandFlags.BoolVar(&askPassword, "password", false, "Prompt for the certificate password to store in the template")
	commandFlags.BoolVar(&newCert, "create-cert", false, "Create a self-signed certificate for testing TLS ingestion")
	commandFlags.StringVar(&certOut, "cert-out", "cert.pem", "Certificate output path (holds the key as well without --key-out)")
	commandFlags.StringVar(&keyOut, "key-out", "", "Private key output path")
	commandFlags.StringVar(&hosts, "hosts", "localhost", "Comma separated DNS names and IP addresses for the certificate")
	commandFlags.BoolVar(&installService, "install-service", false, "Install/Upgrade the collector as a systemd service")
	commandFlags.BoolVar(&uninstallService, "uninstall-service", false, "Remove the collector service")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		exitCode = 1
		return
	}
	commandFlags.Parse(args)

	var err error

	if templateConfPath != "" {
		err = install.CreateTemplateConfig(templateConfPath, askPassword)
	} else if newCert {
		err = install.CreateCertificate(certOut, keyOut, splitHosts(hosts))
	} else if installService {
		install.Run()
	} else if uninstallService {
		install.Remove()
	} else {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		exitCode = 1
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = 1
	}
	return
}

func splitHosts(raw string) (hosts []string) {
	for _, host := range strings.Split(raw, ",") {
		host = strings.TrimSpace(host)
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	return
}
