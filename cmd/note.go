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

type noteCmd struct {
	title  string
	remind string
	edit   string
	rm     string
}

func (*noteCmd) Name() string     { return "note" }
func (*noteCmd) Synopsis() string { return "write, edit or list notes" }
func (*noteCmd) Usage() string {
	return `pkt note [-title <title>] [-remind <date>] [<content>]
pkt note -edit <id> [-title <title>] [-remind <date>] <content>
pkt note -rm <id>

  Without content, lists the notes. A note with a reminder date is emailed on
  that day by 'pkt remind'.
`
}

func (c *noteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "title", "", "Title of the note")
	f.StringVar(&c.remind, "remind", "", "Reminder date of the note")
	f.StringVar(&c.edit, "edit", "", "Replace the note with this id")
	f.StringVar(&c.rm, "rm", "", "Delete the note with this id")
}

func (c *noteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, done, err := openBook(ctx, newLogger(logrus.WarnLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	if c.rm != "" {
		if err := book.DeleteNote(pocket.ID(c.rm)); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting note: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Note %s deleted\n", c.rm)
		return subcommands.ExitSuccess
	}

	if f.NArg() == 0 {
		if c.edit != "" {
			fmt.Fprintln(os.Stderr, "Error: the new content of the note is required.")
			return subcommands.ExitUsageError
		}
		notes, err := book.Notes()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing notes: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RenderNotes(notes, book.Now()))
		return subcommands.ExitSuccess
	}

	n := pocket.Note{ID: pocket.ID(c.edit), Title: c.title, Content: strings.Join(f.Args(), " ")}
	if c.remind != "" {
		if n.ReminderDate, err = date.ParseRelative(c.remind, book.Today()); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing reminder date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.edit != "" {
		n, err = book.UpdateNote(n)
	} else {
		n, err = book.AddNote(n)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving note: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Note %s saved\n", n.ID)
	return subcommands.ExitSuccess
}
