package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/etnz/pocket/renderer"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type addCmd struct {
	date     string
	category string
	income   bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an expense or an income" }
func (*addCmd) Usage() string {
	return `pkt add [-d <date>] [-c <category>] [-income] <amount> <description>

  Records an expense, or an income with -income. The date must be in the current month.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "Date of the transaction. See the user manual for supported date formats.")
	f.StringVar(&c.category, "c", "Otros", "Category of the transaction: "+strings.Join(pocket.Categories, ", "))
	f.BoolVar(&c.income, "income", false, "Record an income instead of an expense")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: an amount and a description are required.")
		return subcommands.ExitUsageError
	}
	amount, err := pocket.ParseMoney(f.Arg(0), currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}

	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	on, err := date.ParseRelative(c.date, book.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	tx := pocket.Transaction{
		Date:        on,
		Type:        pocket.Expense,
		Description: strings.Join(f.Args()[1:], " "),
		Amount:      amount,
		Category:    c.category,
	}
	if c.income {
		tx.Type = pocket.Income
	}
	tx, err = book.AddTransaction(tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s %s %s %q recorded (%s)\n", tx.Date, tx.Type, tx.Signed().SignedString(), tx.Description, tx.ID)
	return subcommands.ExitSuccess
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete transactions of the current month" }
func (*rmCmd) Usage() string {
	return `pkt rm <id>...

  Deletes transactions by identifier. Transactions of a past month cannot be deleted.
`
}

func (*rmCmd) SetFlags(f *flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a transaction id is required.")
		return subcommands.ExitUsageError
	}
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		if err := book.DeleteTransaction(pocket.ID(id)); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting transaction: %v\n", err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("Transaction %s deleted\n", id)
	}
	return status
}

type listCmd struct {
	month string
	start string
	end   string
	head  int
	tail  int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list transactions" }
func (*listCmd) Usage() string {
	return `pkt list [-m <month> | -s <start_date> -e <end_date>] [-head <n>] [-tail <n>]

  Lists the transactions of the book, with options for filtering and limiting the output.
  Transactions of a closed month are archived in its snapshot and no longer listed.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month to list (YYYY-MM).")
	f.StringVar(&c.start, "s", "", "The start date for a custom range. Overrides -m.")
	f.StringVar(&c.end, "e", "", "The end date for a custom range.")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	var r date.Range
	if c.month != "" {
		m, err := date.ParseMonth(c.month)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing month: %v\n", err)
			return subcommands.ExitUsageError
		}
		r = m.Range()
	}
	if c.start != "" {
		if r.From, err = date.ParseRelative(c.start, book.Today()); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
		r.To = date.Date{}
	}
	if c.end != "" {
		if r.To, err = date.ParseRelative(c.end, book.Today()); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	txs, err := book.Transactions(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}
	if c.tail > 0 && len(txs) > c.tail {
		txs = txs[len(txs)-c.tail:]
	}
	printMarkdown(renderer.RenderTransactions(txs))
	return subcommands.ExitSuccess
}
