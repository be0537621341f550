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

type loanCmd struct {
	date      string
	rate      string
	notes     string
	pay       string
	rm        string
	rmPayment string
}

func (*loanCmd) Name() string     { return "loan" }
func (*loanCmd) Synopsis() string { return "record loans and their payments, or list them" }
func (*loanCmd) Usage() string {
	return `pkt loan
pkt loan [-d <start_date>] [-rate <annual_rate>] [-notes <notes>] <principal> <borrower>
pkt loan -pay <loan_id> [-d <date>] <amount>
pkt loan -rm <loan_id>
pkt loan -rm-payment <payment_id>

  Without arguments, lists the loans with their simple interest accrued to
  date, the payments received and the outstanding amount.
`
}

func (c *loanCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "Start date of the loan, or date of the payment.")
	f.StringVar(&c.rate, "rate", "0", "Annual interest rate of the loan, in percent")
	f.StringVar(&c.notes, "notes", "", "Free notes on the loan")
	f.StringVar(&c.pay, "pay", "", "Record a payment received on the loan with this id")
	f.StringVar(&c.rm, "rm", "", "Delete the loan with this id, and its payments")
	f.StringVar(&c.rmPayment, "rm-payment", "", "Delete the payment with this id")
}

func (c *loanCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	switch {
	case c.rm != "":
		if err := book.DeleteLoan(pocket.ID(c.rm)); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting loan: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Loan %s deleted\n", c.rm)
		return subcommands.ExitSuccess

	case c.rmPayment != "":
		if err := book.DeletePayment(pocket.ID(c.rmPayment)); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting payment: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Payment %s deleted\n", c.rmPayment)
		return subcommands.ExitSuccess

	case f.NArg() == 0:
		loans, err := book.Loans()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing loans: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderLoans(loans))
		return subcommands.ExitSuccess
	}

	on, err := date.ParseRelative(c.date, book.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := pocket.ParseMoney(f.Arg(0), book.Currency())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}

	if c.pay != "" {
		p, err := book.AddPayment(pocket.LoanPayment{LoanID: pocket.ID(c.pay), Date: on, Amount: amount})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error adding payment: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Payment of %s on %s recorded (%s)\n", p.Amount, p.Date, p.ID)
		return subcommands.ExitSuccess
	}

	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: a principal and a borrower are required.")
		return subcommands.ExitUsageError
	}
	rate, err := pocket.ParsePercent(c.rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing rate: %v\n", err)
		return subcommands.ExitUsageError
	}
	l, err := book.AddLoan(pocket.Loan{
		Borrower:   strings.Join(f.Args()[1:], " "),
		Principal:  amount,
		AnnualRate: rate,
		StartDate:  on,
		Notes:      c.notes,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding loan: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Loan of %s to %s at %s recorded (%s)\n", l.Principal, l.Borrower, l.AnnualRate, l.ID)
	return subcommands.ExitSuccess
}
