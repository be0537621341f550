package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/etnz/pocket/reminder"
	"github.com/etnz/pocket/server"
	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type serveCmd struct {
	addr       string
	syncSpec   string
	remindSpec string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the JSON API and run the background jobs" }
func (*serveCmd) Usage() string {
	return `pkt serve [-addr <addr>] [-sync <schedule>] [-remind <schedule>]

  Serves the book as a JSON API, and runs on schedule:
    - the delivery of pending changes to the remote backup, if any,
    - the closing of the previous month, every day after midnight,
    - the reminders of the day, if an SMTP server is configured.
  Schedules are cron expressions, like "@every 30s" or "0 9 * * *".
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", getEnv("POCKET_ADDR", "localhost:8080"), "Address to listen on")
	f.StringVar(&c.syncSpec, "sync", getEnv("POCKET_CRON", "@every 30s"), "Schedule of the remote backup delivery")
	f.StringVar(&c.remindSpec, "remind", getEnv("POCKET_REMIND_CRON", "0 9 * * *"), "Schedule of the reminders")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	log := newLogger(logrus.InfoLevel)
	book, done, err := openBook(ctx, log)
	if err != nil {
		log.Errorf("Failed to open book: %v", err)
		return subcommands.ExitFailure
	}
	defer done()

	jobs := cron.New(cron.WithLogger(cron.PrintfLogger(log)), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := jobs.AddFunc("5 0 * * *", func() {
		if _, _, err := book.ClosePreviousMonth(); err != nil {
			log.WithError(err).Error("month closing failed")
		}
	}); err != nil {
		log.Errorf("Failed to schedule month closing: %v", err)
		return subcommands.ExitFailure
	}

	if remoteURL != "" {
		remote, err := openRemote(ctx, log)
		if err != nil {
			log.Errorf("Failed to connect to the remote backup: %v", err)
			return subcommands.ExitFailure
		}
		defer closeRemote(remote)
		w, err := newWorker(book, remote, log)
		if err != nil {
			log.Errorf("Failed to create the sync worker: %v", err)
			return subcommands.ExitFailure
		}
		if _, err := jobs.AddFunc(c.syncSpec, func() {
			delivered, failed, err := w.Drain(ctx)
			if err != nil {
				log.WithError(err).Error("sync failed")
				return
			}
			if delivered+failed > 0 {
				log.WithFields(logrus.Fields{"delivered": delivered, "failed": failed}).Info("outbox drained")
			}
		}); err != nil {
			log.Errorf("Invalid sync schedule %q: %v", c.syncSpec, err)
			return subcommands.ExitUsageError
		}
	} else {
		log.Warn("No remote backup configured, changes stay in the outbox")
	}

	if sender, err := reminder.NewSender(smtpConfig(), log); err == nil {
		if _, err := jobs.AddFunc(c.remindSpec, func() {
			if _, err := sendReminders(book, sender); err != nil {
				log.WithError(err).Error("reminders failed")
			}
		}); err != nil {
			log.Errorf("Invalid reminder schedule %q: %v", c.remindSpec, err)
			return subcommands.ExitUsageError
		}
	} else {
		log.Infof("Reminders disabled: %v", err)
	}

	jobs.Start()
	defer func() { <-jobs.Stop().Done() }()

	srv := &http.Server{
		Addr:         c.addr,
		Handler:      server.NewHandler(book, log).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()

	log.Infof("Starting server on %s", c.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
