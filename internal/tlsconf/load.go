// TLS material loading and the shared server configuration for the stream listener
package tlsconf

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pkcs12"
)

// Loads the server certificate. PKCS#12 files are recognized by extension (.pfx, .p12).
func LoadCertificate(certPath, password, keyPath string) (cert tls.Certificate, err error) {
	data, err := os.ReadFile(certPath)
	if err != nil {
		err = fmt.Errorf("failed to read certificate file: %w", err)
		return
	}

	switch strings.ToLower(filepath.Ext(certPath)) {
	case ".pfx", ".p12":
		cert, err = decodePKCS12(data, password)
	default:
		keyData := data
		if keyPath != "" {
			keyData, err = os.ReadFile(keyPath)
			if err != nil {
				err = fmt.Errorf("failed to read private key file: %w", err)
				return
			}
		}
		cert, err = tls.X509KeyPair(data, keyData)
		if err != nil {
			err = fmt.Errorf("failed to parse PEM certificate/key: %w", err)
		}
	}
	return
}

// Converts the PKCS#12 bags to PEM and hands them to tls.X509KeyPair.
// The bag order is not fixed, so the certificate matching the key is moved to the front.
func decodePKCS12(data []byte, password string) (cert tls.Certificate, err error) {
	blocks, err := pkcs12.ToPEM(data, password)
	if err != nil {
		err = fmt.Errorf("failed to decode PKCS#12 certificate: %w", err)
		return
	}

	var certBlocks [][]byte
	var keyPEM []byte
	for _, block := range blocks {
		switch block.Type {
		case "CERTIFICATE":
			certBlocks = append(certBlocks, pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: block.Bytes}))
		case "PRIVATE KEY":
			keyPEM = pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: block.Bytes})
		}
	}
	if keyPEM == nil {
		err = fmt.Errorf("PKCS#12 certificate contains no private key")
		return
	}
	if len(certBlocks) == 0 {
		err = fmt.Errorf("PKCS#12 certificate contains no certificates")
		return
	}

	for i := range certBlocks {
		chain := append([][]byte{certBlocks[i]}, certBlocks[:i]...)
		chain = append(chain, certBlocks[i+1:]...)
		cert, err = tls.X509KeyPair(bytes.Join(chain, nil), keyPEM)
		if err == nil {
			return
		}
	}
	err = fmt.Errorf("PKCS#12 certificate has no certificate matching its private key: %w", err)
	return
}

// Reads a PEM bundle of CA certificates
func LoadCertPool(path string) (pool *x509.CertPool, certs []*x509.Certificate, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read CA file: %w", err)
		return
	}

	pool = x509.NewCertPool()
	for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
		if block.Type != "CERTIFICATE" {
			continue
		}
		var ca *x509.Certificate
		ca, err = x509.ParseCertificate(block.Bytes)
		if err != nil {
			err = fmt.Errorf("failed to parse CA certificate in '%s': %w", path, err)
			return
		}
		pool.AddCert(ca)
		certs = append(certs, ca)
	}

	if len(certs) == 0 {
		err = fmt.Errorf("no certificates found in '%s'", path)
	}
	return
}

// Reads revocation lists (PEM "X509 CRL" blocks or raw DER).
// When issuers are given, each list must be signed by the issuer it names.
func LoadCRLs(paths []string, issuers []*x509.Certificate) (lists []*x509.RevocationList, err error) {
	for _, path := range paths {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			err = fmt.Errorf("failed to read CRL file: %w", err)
			return
		}

		var ders [][]byte
		for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
			if block.Type == "X509 CRL" {
				ders = append(ders, block.Bytes)
			}
		}
		if len(ders) == 0 {
			ders = [][]byte{data}
		}

		for _, der := range ders {
			var crl *x509.RevocationList
			crl, err = x509.ParseRevocationList(der)
			if err != nil {
				err = fmt.Errorf("failed to parse CRL in '%s': %w", path, err)
				return
			}

			err = checkCRLSignature(crl, issuers)
			if err != nil {
				err = fmt.Errorf("CRL in '%s': %w", path, err)
				return
			}
			lists = append(lists, crl)
		}
	}
	return
}

func checkCRLSignature(crl *x509.RevocationList, issuers []*x509.Certificate) (err error) {
	if len(issuers) == 0 {
		return
	}
	for _, issuer := range issuers {
		if !bytes.Equal(issuer.RawSubject, crl.RawIssuer) {
			continue
		}
		err = crl.CheckSignatureFrom(issuer)
		if err != nil {
			err = fmt.Errorf("invalid signature: %w", err)
		}
		return
	}
	err = fmt.Errorf("issuer '%s' is not a configured client CA", crl.Issuer.String())
	return
}
