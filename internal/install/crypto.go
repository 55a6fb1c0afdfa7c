package install

import (
	"fmt"
	"os"
	"syslogsrv/internal/tlsconf"
	"time"
)

const testCertificateValidity time.Duration = 365 * 24 * time.Hour

// Writes a self-signed certificate for testing TLS ingestion.
// With an empty keyOut, key and certificate share one PEM file.
func CreateCertificate(certOut, keyOut string, hosts []string) (err error) {
	if certOut == "" {
		err = fmt.Errorf("specify certificate output path via the --cert-out argument")
		return
	}

	certPEM, keyPEM, err := tlsconf.GenerateSelfSigned(hosts, testCertificateValidity)
	if err != nil {
		return
	}

	if keyOut == "" {
		err = os.WriteFile(certOut, append(certPEM, keyPEM...), 0600)
		if err != nil {
			err = fmt.Errorf("failed to write certificate bundle: %w", err)
			return
		}
		fmt.Printf("Successfully wrote certificate and key to '%s'\n", certOut)
		return
	}

	err = os.WriteFile(certOut, certPEM, 0644)
	if err != nil {
		err = fmt.Errorf("failed to write certificate: %w", err)
		return
	}
	err = os.WriteFile(keyOut, keyPEM, 0600)
	if err != nil {
		err = fmt.Errorf("failed to write private key: %w", err)
		return
	}
	fmt.Printf("Successfully wrote certificate to '%s' and key to '%s'\n", certOut, keyOut)
	return
}
