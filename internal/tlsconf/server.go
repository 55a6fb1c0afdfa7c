package tlsconf

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// Builds the read-only configuration shared by every accepted connection.
// TLS 1.2 minimum. With AuthRequired a client certificate must be presented,
// and it is chain-verified when a client CA bundle is configured.
// Every presented client certificate is checked against the loaded CRLs.
func NewServerConfig(opts Options) (cfg *tls.Config, err error) {
	cert, err := LoadCertificate(opts.CertificatePath, opts.CertificatePassword, opts.KeyPath)
	if err != nil {
		return
	}

	// Senders are write-only: a session ticket left unread resets their connection on close
	cfg = &tls.Config{
		MinVersion:             tls.VersionTLS12,
		Certificates:           []tls.Certificate{cert},
		ClientAuth:             tls.NoClientCert,
		SessionTicketsDisabled: true,
	}

	var caCerts []*x509.Certificate
	if opts.ClientCAPath != "" {
		cfg.ClientCAs, caCerts, err = LoadCertPool(opts.ClientCAPath)
		if err != nil {
			cfg = nil
			return
		}
	}

	switch {
	case opts.AuthRequired && cfg.ClientCAs != nil:
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	case opts.AuthRequired:
		cfg.ClientAuth = tls.RequireAnyClientCert
	case cfg.ClientCAs != nil:
		cfg.ClientAuth = tls.VerifyClientCertIfGiven
	}

	if len(opts.CRLPaths) > 0 {
		var lists []*x509.RevocationList
		lists, err = LoadCRLs(opts.CRLPaths, caCerts)
		if err != nil {
			cfg = nil
			return
		}
		cfg.VerifyPeerCertificate = revocationChecker(lists)
	}
	return
}

// Rejects the handshake when any presented certificate is listed by a CRL from its issuer
func revocationChecker(lists []*x509.RevocationList) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) (err error) {
		for _, raw := range rawCerts {
			var cert *x509.Certificate
			cert, err = x509.ParseCertificate(raw)
			if err != nil {
				err = fmt.Errorf("failed to parse client certificate: %w", err)
				return
			}
			err = checkRevoked(cert, lists)
			if err != nil {
				return
			}
		}
		return
	}
}

func checkRevoked(cert *x509.Certificate, lists []*x509.RevocationList) (err error) {
	for _, crl := range lists {
		if !bytes.Equal(crl.RawIssuer, cert.RawIssuer) {
			continue
		}
		for _, entry := range crl.RevokedCertificateEntries {
			if entry.SerialNumber != nil && entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
				err = fmt.Errorf("%w: serial %s issued by '%s'", ErrCertificateRevoked,
					cert.SerialNumber.String(), cert.Issuer.String())
				return
			}
		}
	}
	return
}
