// Package main generates a Certificate Authority (CA) and a server
// certificate signed by it, writing them to files under the "certs"
// directory. Point the server at server.crt/server.key and the client at
// ca.crt to serve the API over HTTPS.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/atinyakov/TaskKeeper/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := run(*dir, strings.Split(*hosts, ",")); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("✅ Certificates generated into ./%s\n", *dir)
}

// run writes ca.crt, ca.key, server.crt and server.key into dir.
func run(dir string, hosts []string) error {
	var clean []string
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			clean = append(clean, h)
		}
	}

	caCert, caKey, caPEM, caKeyPEM, err := certgen.GenerateCA("TaskKeeper CA")
	if err != nil {
		return err
	}
	if err := certgen.WritePair(filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key"), caPEM, caKeyPEM); err != nil {
		return err
	}

	certPEM, keyPEM, err := certgen.GenerateServerCertificate(clean, caCert, caKey)
	if err != nil {
		return err
	}
	return certgen.WritePair(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"), certPEM, keyPEM)
}
