package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/pocket/assist"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

// askCmd is the subcommand for the natural language assistant.
type askCmd struct {
	add   bool
	model string
}

func (*askCmd) Name() string     { return "ask" }
func (*askCmd) Synopsis() string { return "describe a transaction in plain words" }
func (*askCmd) Usage() string {
	return `pkt ask [-add] [-model <model>] <text>

  Asks Gemini for the transaction described by the text, like
  "ayer gasté 12,50 en el cine", and displays it. With -add, records it.
  The API key is read from GEMINI_API_KEY or GOOGLE_API_KEY.
`
}

func (c *askCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.add, "add", false, "Record the transaction")
	f.StringVar(&c.model, "model", getEnv("POCKET_MODEL", assist.DefaultModel), "Gemini model to ask")
}

func (c *askCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text := strings.Join(f.Args(), " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, "Error: describe the transaction.")
		return subcommands.ExitUsageError
	}
	log := newLogger(logrus.WarnLevel)
	book, done, err := openBook(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	model, err := assist.NewGemini(ctx, "", c.model)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	p := assist.Parser{Model: model, Currency: book.Currency(), Log: log}
	draft, err := p.Parse(ctx, text, book.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error understanding %q: %v\n", text, err)
		return subcommands.ExitFailure
	}

	tx := draft.Transaction
	fmt.Printf("%s %s %s %q [%s]\n", tx.Date, tx.Type, tx.Signed().SignedString(), tx.Description, tx.Category)
	if draft.Recurring {
		fmt.Println("Looks like a recurring transaction.")
	}
	if !c.add {
		return subcommands.ExitSuccess
	}
	if tx, err = book.AddTransaction(tx); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded (%s)\n", tx.ID)
	return subcommands.ExitSuccess
}
