// Package certs provides a self-signed localhost certificate for serving the
// chat API over HTTPS.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	certName = "localhost.crt"
	keyName  = "localhost.key"

	validity = 365 * 24 * time.Hour
	// Certificates this close to expiry are replaced.
	renewBefore = 7 * 24 * time.Hour
)

// FileManager keeps a localhost certificate pair in a directory.
type FileManager struct {
	now      func() time.Time
	certFile string
	keyFile  string
	dir      string
}

// NewFileManager creates a FileManager rooted at dir.
func NewFileManager(dir string) *FileManager {
	return &FileManager{
		dir:      dir,
		certFile: filepath.Join(dir, certName),
		keyFile:  filepath.Join(dir, keyName),
		now:      time.Now,
	}
}

// GetOrCreateCertificate loads the stored pair, replacing it when it is
// missing, unreadable, expiring or not valid for localhost.
func (m *FileManager) GetOrCreateCertificate() (tls.Certificate, error) {
	if cert, err := tls.LoadX509KeyPair(m.certFile, m.keyFile); err == nil && m.usable(cert) == nil {
		return cert, nil
	}
	return m.generate()
}

// TLSConfig returns a server TLS configuration for the managed certificate.
func (m *FileManager) TLSConfig() (*tls.Config, error) {
	cert, err := m.GetOrCreateCertificate()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func (m *FileManager) usable(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return errors.New("no certificate in pair")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := m.now()
	if now.Before(leaf.NotBefore) {
		return errors.New("certificate not yet valid")
	}
	if now.Add(renewBefore).After(leaf.NotAfter) {
		return errors.New("certificate expires soon")
	}
	if err := leaf.VerifyHostname("localhost"); err != nil {
		return fmt.Errorf("certificate not valid for localhost: %w", err)
	}
	return nil
}

func (m *FileManager) generate() (tls.Certificate, error) {
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate directory: %w", err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := m.now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"spice"}, CommonName: "localhost"},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:              []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to encode private key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	if err := os.WriteFile(m.certFile, certPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := os.WriteFile(m.keyFile, keyPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to write private key: %w", err)
	}

	return tls.X509KeyPair(certPEM, keyPEM)
}
