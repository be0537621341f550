package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/mirror"
	"github.com/etnz/pocket/reminder"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// newWorker returns the worker delivering the outbox of book to remote.
// The outbox is scheduled on the real clock, whatever the simulated now of book.
func newWorker(book *pocket.Book, remote mirror.Remote, log logrus.FieldLogger) (*mirror.Worker, error) {
	device, err := book.DeviceID()
	if err != nil {
		return nil, err
	}
	return &mirror.Worker{
		Queue:     book.Store(),
		Remote:    remote,
		DeviceID:  device,
		Log:       log,
		Limiter:   rate.NewLimiter(rate.Every(100*time.Millisecond), getEnvAsInt("POCKET_SYNC_BURST", 10)),
		BatchSize: getEnvAsInt("POCKET_SYNC_BATCH", 50),
	}, nil
}

type syncCmd struct{}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "send the pending changes to the remote backup" }
func (*syncCmd) Usage() string {
	return `pkt sync

  Sends every pending change to the remote backup once. Failed changes are
  retried later, with an increasing delay.
`
}

func (*syncCmd) SetFlags(f *flag.FlagSet) {}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger(logrus.WarnLevel)
	book, done, err := openBook(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	remote, err := openRemote(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to the remote backup: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeRemote(remote)

	w, err := newWorker(book, remote, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	delivered, failed, err := w.Drain(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending changes: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d changes sent, %d failed\n", delivered, failed)
	if failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type remindCmd struct{}

func (*remindCmd) Name() string     { return "remind" }
func (*remindCmd) Synopsis() string { return "email the notes with a reminder today" }
func (*remindCmd) Usage() string {
	return `pkt remind

  Emails every note whose reminder date is today, through the SMTP server
  configured by the POCKET_SMTP_HOST, POCKET_SMTP_PORT, POCKET_SMTP_USER,
  POCKET_SMTP_PASSWORD, POCKET_SMTP_FROM and POCKET_SMTP_TO variables.
`
}

func (*remindCmd) SetFlags(f *flag.FlagSet) {}

func (c *remindCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger(logrus.WarnLevel)
	book, done, err := openBook(ctx, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer done()

	sender, err := reminder.NewSender(smtpConfig(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	n, err := sendReminders(book, sender)
	fmt.Printf("%d reminders sent\n", n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending reminders: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func sendReminders(book *pocket.Book, sender *reminder.Sender) (int, error) {
	notes, err := book.Notes()
	if err != nil {
		return 0, err
	}
	return sender.SendDue(notes, book.Today())
}
