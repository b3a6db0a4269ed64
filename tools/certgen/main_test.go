package main

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/TaskKeeper/internal/certgen"
)

func TestRun_WritesUsableCertificates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")

	if err := run(dir, []string{" localhost ", "", "127.0.0.1"}); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"ca.crt", "ca.key", "server.crt", "server.key"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	caCert, _, err := certgen.LoadCACredentials(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key"))
	if err != nil {
		t.Fatalf("LoadCACredentials: %v", err)
	}

	pair, err := tls.LoadX509KeyPair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"))
	if err != nil {
		t.Fatalf("LoadX509KeyPair: %v", err)
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatal(err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(caCert)
	for _, host := range []string{"localhost", "127.0.0.1"} {
		if _, err := leaf.Verify(x509.VerifyOptions{Roots: pool, DNSName: host}); err != nil {
			t.Errorf("server cert not valid for %s: %v", host, err)
		}
	}
}

func TestRun_NoHosts(t *testing.T) {
	dir := t.TempDir()
	if err := run(dir, []string{"", " "}); err == nil {
		t.Error("expected error without hosts")
	}

	data, err := os.ReadFile(filepath.Join(dir, "ca.crt"))
	if err != nil {
		t.Fatalf("CA should still be written: %v", err)
	}
	if b, _ := pem.Decode(data); b == nil {
		t.Error("ca.crt is not PEM")
	}
}
