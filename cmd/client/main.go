package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/atinyakov/TaskKeeper/internal/client/api"
	"github.com/atinyakov/TaskKeeper/internal/client/shell"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and dispatches to the signup, signin or
// shell commands.
func main() {
	var (
		cmd       string
		baseURL   string
		caFile    string
		tokenFile string
		showVer   bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: signup | signin | shell")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert trusted for HTTPS")
	flag.StringVar(&tokenFile, "token", api.DefaultTokenFile, "path to the saved access token")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("TaskKeeper Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpClient, err := api.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	client := api.New(baseURL, httpClient)
	prompt := api.NewPrompter(os.Stdin, os.Stdout)

	switch cmd {
	case "signup":
		username, password, ok := prompt.Credentials()
		if !ok {
			log.Fatal("no credentials given")
		}
		if err := client.SignUp(ctx, username, password); err != nil {
			log.Fatal(err)
		}
		fmt.Println("✅ Signup successful. Run -cmd signin next.")
	case "signin":
		username, password, ok := prompt.Credentials()
		if !ok {
			log.Fatal("no credentials given")
		}
		token, err := client.SignIn(ctx, username, password)
		if err != nil {
			log.Fatal(err)
		}
		if err := api.SaveToken(tokenFile, token); err != nil {
			log.Fatal(err)
		}
		fmt.Println("✅ Signed in. Token saved to", tokenFile)
	case "shell":
		token, err := api.LoadToken(tokenFile)
		if err != nil {
			log.Fatalf("%v: run -cmd signin first", err)
		}
		client.Token = token
		shell.Run(ctx, client, os.Stdin, os.Stdout)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
