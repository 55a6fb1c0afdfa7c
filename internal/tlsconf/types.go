package tlsconf

import "errors"

// Returned (wrapped) when a presented client certificate is on a loaded CRL
var ErrCertificateRevoked = errors.New("certificate revoked")

// Inputs for building the listener configuration
type Options struct {
	CertificatePath     string   // .pfx/.p12 (PKCS#12) or PEM bundle
	CertificatePassword string   // PKCS#12 only
	KeyPath             string   // PEM private key when not bundled with the certificate
	ClientCAPath        string   // PEM bundle used to verify client chains
	CRLPaths            []string // PEM or DER revocation lists
	AuthRequired        bool     // client certificate must be presented
}
