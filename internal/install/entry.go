// Handles all installation/setup/configuration/updates
package install

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Full installation as a systemd service (idempotent)
func Run() {
	// Must run as root
	if os.Geteuid() != 0 {
		fmt.Fprintf(os.Stderr, "Installation must be run as root\n")
		os.Exit(1)
	}

	// Move binary (self) into place
	err := installBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error installing binary: %v\n", err)
		os.Exit(1)
	}

	// Add shell autocomplete
	err = installBashAutocomplete()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting bash autocomplete: %v\n", err)
		os.Exit(1)
	}

	// Create service config and a test certificate
	err = installConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with template config: %v\n", err)
		os.Exit(1)
	}

	// Create apparmor profile if system supports it
	err = installAAProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with AppArmor profile: %v\n", err)
		os.Exit(1)
	}

	// Create systemd service
	err = installService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with Systemd service: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Installation completed successfully\n")
}

// Full uninstall (collected log files are left in place)
func Remove() {
	// Only ask if in terminal
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if !confirm("Are you SURE you want to uninstall? (this will remove the configuration files) (yes/no): ") {
			fmt.Printf("Aborting uninstall\n")
			return
		}
	}

	// Must run as root
	if os.Geteuid() != 0 {
		fmt.Fprintf(os.Stderr, "Uninstall must be run as root\n")
		os.Exit(1)
	}

	err := uninstallAAProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with AppArmor profile: %v\n", err)
	}

	err = uninstallService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with Systemd service: %v\n", err)
	}

	err = uninstallBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error removing binary: %v\n", err)
	}

	err = uninstallBashAutocomplete()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error removing bash autocomplete: %v\n", err)
	}

	err = uninstallConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with template config: %v\n", err)
	}
}

// Reads a yes/no answer from stdin
func confirm(prompt string) (yes bool) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	yes = strings.ToLower(input) == "yes"
	return
}
