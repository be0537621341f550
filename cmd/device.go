package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/pocket"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type deviceCmd struct{}

func (*deviceCmd) Name() string     { return "device" }
func (*deviceCmd) Synopsis() string { return "display the device id and the pending replications" }
func (*deviceCmd) Usage() string {
	return `pkt device

  Displays the id partitioning this book in the remote backup, and the number
  of changes waiting to be sent.
`
}

func (*deviceCmd) SetFlags(f *flag.FlagSet) {}

func (c *deviceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	id, err := book.DeviceID()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading device id: %v\n", err)
		return subcommands.ExitFailure
	}
	pending, err := book.Store().Pending()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading the outbox: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Device: %s\n", id)
	fmt.Printf("Pending replications: %d\n", pending)
	if remoteURL == "" {
		fmt.Println("Remote backup: none")
	}
	return subcommands.ExitSuccess
}

type nowCmd struct {
	set       string
	clear     bool
	nextMonth bool
}

func (*nowCmd) Name() string     { return "now" }
func (*nowCmd) Synopsis() string { return "display or simulate the current time of the book" }
func (*nowCmd) Usage() string {
	return `pkt now [-set <time> | -clear | -next-month]

  Displays the current time of the book. A simulated now makes every command
  run at that time, to try out month closing.
`
}

func (c *nowCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.set, "set", "", "Simulate this RFC 3339 time, like 2025-05-01T09:00:00+02:00")
	f.BoolVar(&c.clear, "clear", false, "Run on the real clock again")
	f.BoolVar(&c.nextMonth, "next-month", false, "Simulate the first day of the next month at 9:00")
}

func (c *nowCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger(logrus.WarnLevel)
	book, done, err := openBook(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	switch {
	case c.clear:
		err = book.ClearSimulatedNow()
	case c.nextMonth:
		err = book.SetSimulatedNow(pocket.NextMonth(book.Now()))
	case c.set != "":
		t, perr := time.Parse(time.RFC3339, c.set)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", perr)
			return subcommands.ExitUsageError
		}
		err = book.SetSimulatedNow(t)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error changing the time: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.clear || c.nextMonth || c.set != "" {
		// the new month may need closing
		if _, _, err := book.ClosePreviousMonth(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing the previous month: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if t, ok := book.SimulatedNow(); ok {
		fmt.Printf("Simulated now: %s\n", t.Format(time.RFC3339))
		return subcommands.ExitSuccess
	}
	fmt.Printf("Now: %s\n", book.Now().Format(time.RFC3339))
	return subcommands.ExitSuccess
}
