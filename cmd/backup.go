package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/etnz/pocket/renderer"
	"github.com/etnz/pocket/statement"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export transactions and notes as a JSON backup" }
func (*exportCmd) Usage() string {
	return `pkt export [-o <file>]

  Writes a JSON backup of the transactions and notes, to stdout by default.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, defaults to stdout")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	var w io.Writer = os.Stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}
	if err := book.Export(w); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type importCmd struct {
	camt        bool
	receipt     bool
	month       string
	forceClosed bool
	dryRun      bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a JSON backup, a bank statement or a receipt" }
func (*importCmd) Usage() string {
	return `pkt import [-camt | -receipt [-m <month>]] [-force-closed] [-dry-run] <file>

  Without option, replaces the transactions and notes with the ones of a JSON
  backup made by 'pkt export'.

  With -camt, adds the booked entries of an ISO 20022 camt.053 bank statement.
  With -receipt, adds the amounts found in the text of a receipt.
  Entries outside the current month are rejected unless -force-closed is set.
  Entries of a month that already has a snapshot are always rejected.

  Use '-' to read from stdin.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.camt, "camt", false, "Read a camt.053 XML bank statement")
	f.BoolVar(&c.receipt, "receipt", false, "Read the text of a receipt")
	f.StringVar(&c.month, "m", "", "Month of receipt lines without a date (YYYY-MM), defaults to the current month")
	f.BoolVar(&c.forceClosed, "force-closed", false, "Record entries of past months that are not closed yet")
	f.BoolVar(&c.dryRun, "dry-run", false, "Print the entries found without recording them")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: a single file is required.")
		return subcommands.ExitUsageError
	}
	if c.camt && c.receipt {
		fmt.Fprintln(os.Stderr, "Error: -camt and -receipt flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	var r io.Reader = os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}

	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	var txs []pocket.Transaction
	switch {
	case c.camt:
		if txs, err = statement.ParseCamt053(r); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading bank statement: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.receipt:
		month, err := parseMonth(c.month, date.MonthOf(book.Today()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
			return subcommands.ExitUsageError
		}
		text, err := io.ReadAll(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading receipt: %v\n", err)
			return subcommands.ExitFailure
		}
		txs = pocket.ParseReceipt(string(text), month, book.Today(), book.Currency())
	default:
		if err := book.Import(r); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing backup: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println("Backup imported")
		return subcommands.ExitSuccess
	}

	if len(txs) == 0 {
		fmt.Println("No transaction found")
		return subcommands.ExitSuccess
	}
	if c.dryRun {
		printMarkdown(renderer.RenderTransactions(txs))
		return subcommands.ExitSuccess
	}
	if c.forceClosed {
		txs, err = book.Backfill(txs...)
	} else {
		txs, err = book.AddTransactions(txs...)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d transactions recorded\n", len(txs))
	return subcommands.ExitSuccess
}

type restoreCmd struct {
	device string
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the book with a remote backup" }
func (*restoreCmd) Usage() string {
	return `pkt restore [-device <id>]

  Replaces every record with the copy held by the remote backup, for this
  device or the one given by -device.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.device, "device", "", "Device id of the backup, defaults to this device")
}

func (c *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger(logrus.WarnLevel)
	book, done, err := openBook(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	device := c.device
	if device == "" {
		if device, err = book.DeviceID(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading device id: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if err := book.RestoreDevice(ctx, remoteFetcher{log: log}, device); err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring device %s: %v\n", device, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Backup of device %s restored\n", device)
	return subcommands.ExitSuccess
}

type wipeCmd struct {
	yes bool
}

func (*wipeCmd) Name() string     { return "wipe" }
func (*wipeCmd) Synopsis() string { return "delete every local record" }
func (*wipeCmd) Usage() string {
	return `pkt wipe -yes

  Deletes every transaction, note, portfolio entry, loan, snapshot and pending
  replication, and clears the simulated now. The remote backup is untouched.
`
}

func (c *wipeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "yes", false, "Confirm the deletion")
}

func (c *wipeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.yes {
		fmt.Fprintln(os.Stderr, "Error: wiping the book cannot be undone, confirm with -yes.")
		return subcommands.ExitUsageError
	}
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	if err := book.Wipe(); err != nil {
		fmt.Fprintf(os.Stderr, "Error wiping the book: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Book wiped")
	return subcommands.ExitSuccess
}
