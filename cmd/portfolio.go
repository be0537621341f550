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

type pfCmd struct {
	date     string
	category string
	symbol   string
	notes    string
	rm       string
}

func (*pfCmd) Name() string     { return "pf" }
func (*pfCmd) Synopsis() string { return "record portfolio buys and sells, or list positions" }
func (*pfCmd) Usage() string {
	return `pkt pf
pkt pf [-d <date>] [-cat <category>] [-symbol <symbol>] [-notes <notes>] <asset> <quantity> <price>
pkt pf -rm <id>

  Without arguments, lists the positions with their average cost.
  A negative quantity records a sell. Prices are per unit.
`
}

func (c *pfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "0d", "Date of the entry. See the user manual for supported date formats.")
	f.StringVar(&c.category, "cat", string(pocket.Other), "Asset category, like accion, etf, cripto or inmueble")
	f.StringVar(&c.symbol, "symbol", "", "Ticker symbol of the asset")
	f.StringVar(&c.notes, "notes", "", "Free notes on the entry")
	f.StringVar(&c.rm, "rm", "", "Delete the portfolio entry with this id")
}

func (c *pfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 && f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: an asset, a quantity and a price are required.")
		return subcommands.ExitUsageError
	}
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	if c.rm != "" {
		if err := book.DeletePortfolioTx(pocket.ID(c.rm)); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting portfolio entry: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Portfolio entry %s deleted\n", c.rm)
		return subcommands.ExitSuccess
	}

	if f.NArg() == 0 {
		ps, err := book.Positions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing positions: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderPositions(ps, book.Currency()))
		return subcommands.ExitSuccess
	}

	p := pocket.PortfolioTx{Asset: f.Arg(0), Symbol: c.symbol, Notes: c.notes}
	if p.Category, err = pocket.ParseAssetCategory(c.category); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing category: %v\n", err)
		return subcommands.ExitUsageError
	}
	if p.Quantity, err = pocket.ParseQuantity(f.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing quantity: %v\n", err)
		return subcommands.ExitUsageError
	}
	if p.Price, err = pocket.ParseMoney(f.Arg(2), book.Currency()); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing price: %v\n", err)
		return subcommands.ExitUsageError
	}
	if p.Date, err = date.ParseRelative(c.date, book.Today()); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	if p, err = book.AddPortfolioTx(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding portfolio entry: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s %s %s at %s recorded (%s)\n", p.Date, p.Quantity, p.Asset, p.Price, p.ID)
	return subcommands.ExitSuccess
}
