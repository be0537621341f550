package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/etnz/pocket/renderer"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// parseMonth parses a YYYY-MM month, or returns def when s is empty.
func parseMonth(s string, def date.Month) (date.Month, error) {
	if s == "" {
		return def, nil
	}
	return date.ParseMonth(s)
}

type monthCmd struct {
	month string
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "display the totals of a month" }
func (*monthCmd) Usage() string {
	return `pkt month [-m <month>]

  Displays the income, expenses and balance of a month, and its transactions
  while it is open. Defaults to the current month.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month to display (YYYY-MM), defaults to the current month.")
}

func (c *monthCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	month, err := parseMonth(c.month, date.MonthOf(book.Today()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	report, err := monthReport(book, month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing month %s: %v\n", month, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderMonth(report))
	return subcommands.ExitSuccess
}

func monthReport(book *pocket.Book, month date.Month) (renderer.Month, error) {
	report := renderer.Month{Now: book.Now()}
	var err error
	if report.Summary, err = book.MonthSummary(month); err != nil {
		return report, err
	}
	snap, closed, err := book.Snapshot(month)
	if err != nil {
		return report, err
	}
	if closed {
		report.Closed = &snap
		return report, nil
	}
	report.Transactions, err = book.Transactions(month.Range())
	return report, err
}

type closeCmd struct {
	month string
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close a past month into its snapshot" }
func (*closeCmd) Usage() string {
	return `pkt close [-m <month>]

  Totals the transactions of a past month into a snapshot and deletes them.
  Defaults to the previous month, which is also closed whenever the book is opened.
`
}

func (c *closeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month to close (YYYY-MM), defaults to the previous month.")
}

func (c *closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	month, err := parseMonth(c.month, date.MonthOf(book.Today()).Prev())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
		return subcommands.ExitUsageError
	}
	snap, created, err := book.CloseMonth(month)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error closing month %s: %v\n", month, err)
		return subcommands.ExitFailure
	}
	switch {
	case created:
		fmt.Printf("Month %s closed: %d transactions, balance %s\n", month, snap.TransactionCount, snap.Balance.SignedString())
	case snap.Month == month:
		fmt.Printf("Month %s was already closed\n", month)
	default:
		fmt.Printf("Month %s has no transaction to close\n", month)
	}
	return subcommands.ExitSuccess
}

type snapshotsCmd struct{}

func (*snapshotsCmd) Name() string     { return "snapshots" }
func (*snapshotsCmd) Synopsis() string { return "list the closed months" }
func (*snapshotsCmd) Usage() string {
	return `pkt snapshots

  Lists the totals of every closed month.
`
}

func (*snapshotsCmd) SetFlags(f *flag.FlagSet) {}

func (c *snapshotsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	ss, err := book.Snapshots()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing snapshots: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSnapshots(ss, book.Now()))
	return subcommands.ExitSuccess
}

type analyticsCmd struct{}

func (*analyticsCmd) Name() string     { return "analytics" }
func (*analyticsCmd) Synopsis() string { return "display averages and yearly totals of the closed months" }
func (*analyticsCmd) Usage() string {
	return `pkt analytics

  Displays the averages of the last three closed months, the best and worst
  months, the savings rate and the totals per year.
`
}

func (*analyticsCmd) SetFlags(f *flag.FlagSet) {}

func (c *analyticsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	a, err := book.Analytics()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing analytics: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderAnalytics(a))
	return subcommands.ExitSuccess
}
