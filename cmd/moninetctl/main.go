// Package main provides moninetctl, a command line client for a running
// moninet instance. It talks to the instance over its control socket.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/shini4i/moninet/internal/control/client"
	"github.com/shini4i/moninet/internal/control/protocol"
	"github.com/shini4i/moninet/internal/control/server"
)

var version = "dev"

const usageText = `Usage: moninetctl [flags] <command>

Commands:
  status       Show the current speed and data usage
  reset        Reset the data usage totals
  toggle-unit  Switch the speed unit between MB/s and Mbps
  restore      Show the overlay window
  watch        Print every reading until interrupted

Flags:
`

func main() {
	socketPath := flag.String("socket", server.DefaultSocketPath(), "Path to the moninet control socket")
	asJSON := flag.Bool("json", false, "Print readings as JSON")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("moninetctl %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, *socketPath, flag.Arg(0), *asJSON); err != nil {
		if errors.Is(err, client.ErrNotRunning) {
			fmt.Fprintln(os.Stderr, "moninet is not running")
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// run executes one command against the instance at socketPath.
func run(ctx context.Context, out io.Writer, socketPath, command string, asJSON bool) error {
	printer := textPrinter
	if asJSON {
		printer = jsonPrinter
	}

	switch command {
	case "watch":
		err := client.Watch(ctx, socketPath, func(s protocol.StatusResult) {
			_ = printer(out, s)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case "restore":
		callCtx, cancel := context.WithTimeout(ctx, client.DefaultTimeout)
		defer cancel()
		return client.Restore(callCtx, socketPath)
	}

	call, ok := statusCommands[command]
	if !ok {
		return fmt.Errorf("unknown command %q", command)
	}

	callCtx, cancel := context.WithTimeout(ctx, client.DefaultTimeout)
	defer cancel()

	status, err := call(callCtx, socketPath)
	if err != nil {
		return err
	}
	return printer(out, status)
}

var statusCommands = map[string]func(context.Context, string) (protocol.StatusResult, error){
	"status":      client.Status,
	"reset":       client.Reset,
	"toggle-unit": client.ToggleUnit,
}

func textPrinter(w io.Writer, s protocol.StatusResult) error {
	_, err := fmt.Fprintln(w, formatStatus(s))
	return err
}

func jsonPrinter(w io.Writer, s protocol.StatusResult) error {
	return json.NewEncoder(w).Encode(s)
}

// formatStatus renders a status on one line.
func formatStatus(s protocol.StatusResult) string {
	line := fmt.Sprintf("↑ %s  ↓ %s  total ↑ %s  ↓ %s",
		s.Upload, s.Download, s.TotalUploadText, s.TotalDownloadText)
	if s.PersistFailed {
		line += "  (usage not saved)"
	}
	return line
}
