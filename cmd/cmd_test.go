package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/pocket"
	"github.com/etnz/pocket/date"
	"github.com/etnz/pocket/store"
	"github.com/google/subcommands"
)

// setup points the global flags to a fresh database.
func setup(t *testing.T) {
	t.Helper()
	dbPath = filepath.Join(t.TempDir(), "pocket.db")
	currency = "EUR"
	remoteURL, remoteKey = "", ""
	format = "md"
}

// run executes c as if invoked with args.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("%s %v: %v", c.Name(), args, err)
	}
	return c.Execute(context.Background(), fs)
}

func transactions(t *testing.T) []pocket.Transaction {
	t.Helper()
	db, err := store.Open(dbPath, currency)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	txs, err := db.Transactions(date.Range{})
	if err != nil {
		t.Fatal(err)
	}
	return txs
}

func TestAddRm(t *testing.T) {
	setup(t)

	if got := run(t, &addCmd{}, "-c", "Ocio", "12,50", "Cine", "con", "Ana"); got != subcommands.ExitSuccess {
		t.Fatalf("add = %v, want success", got)
	}
	if got := run(t, &addCmd{}, "-income", "2000", "Nómina"); got != subcommands.ExitSuccess {
		t.Fatalf("add -income = %v, want success", got)
	}
	txs := transactions(t)
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	byDesc := map[string]pocket.Transaction{}
	for _, tx := range txs {
		byDesc[tx.Description] = tx
	}
	cine := byDesc["Cine con Ana"]
	if cine.Type != pocket.Expense || !cine.Amount.Equal(pocket.M(12.5, "EUR")) || cine.Category != "Ocio" {
		t.Errorf("cine = %+v, want an expense of 12.50 in Ocio", cine)
	}
	if byDesc["Nómina"].Type != pocket.Income {
		t.Errorf("nómina = %+v, want an income", byDesc["Nómina"])
	}

	if got := run(t, &rmCmd{}, string(cine.ID)); got != subcommands.ExitSuccess {
		t.Errorf("rm = %v, want success", got)
	}
	if got := len(transactions(t)); got != 1 {
		t.Errorf("got %d transactions after rm, want 1", got)
	}
	if got := run(t, &rmCmd{}, "unknown"); got != subcommands.ExitFailure {
		t.Errorf("rm unknown = %v, want failure", got)
	}
}

func TestAdd_Usage(t *testing.T) {
	setup(t)
	tests := [][]string{
		{"12"},
		{"twelve", "Cine"},
		{"-d", "yesterday-ish", "12", "Cine"},
	}
	for _, args := range tests {
		if got := run(t, &addCmd{}, args...); got != subcommands.ExitUsageError {
			t.Errorf("add %v = %v, want a usage error", args, got)
		}
	}
}

func TestImport_Receipt(t *testing.T) {
	setup(t)
	receipt := filepath.Join(t.TempDir(), "ticket.txt")
	if err := os.WriteFile(receipt, []byte("MERCADONA\nPan 1,20\nLeche 0,95\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := run(t, &importCmd{}, "-receipt", "-dry-run", receipt); got != subcommands.ExitSuccess {
		t.Fatalf("import -dry-run = %v, want success", got)
	}
	if got := len(transactions(t)); got != 0 {
		t.Fatalf("dry run recorded %d transactions", got)
	}

	if got := run(t, &importCmd{}, "-receipt", receipt); got != subcommands.ExitSuccess {
		t.Fatalf("import -receipt = %v, want success", got)
	}
	if got := len(transactions(t)); got != 2 {
		t.Errorf("got %d transactions, want 2", got)
	}
}

func TestExportImport(t *testing.T) {
	setup(t)
	run(t, &addCmd{}, "3", "Café")
	backup := filepath.Join(t.TempDir(), "backup.json")
	if got := run(t, &exportCmd{}, "-o", backup); got != subcommands.ExitSuccess {
		t.Fatalf("export = %v, want success", got)
	}

	setup(t)
	if got := run(t, &importCmd{}, backup); got != subcommands.ExitSuccess {
		t.Fatalf("import = %v, want success", got)
	}
	txs := transactions(t)
	if len(txs) != 1 || txs[0].Description != "Café" {
		t.Errorf("imported %v, want the café", txs)
	}
}

func TestWipe(t *testing.T) {
	setup(t)
	run(t, &addCmd{}, "3", "Café")
	if got := run(t, &wipeCmd{}); got != subcommands.ExitUsageError {
		t.Errorf("wipe without -yes = %v, want a usage error", got)
	}
	if got := len(transactions(t)); got != 1 {
		t.Fatalf("got %d transactions, want the café kept", got)
	}
	if got := run(t, &wipeCmd{}, "-yes"); got != subcommands.ExitSuccess {
		t.Errorf("wipe -yes = %v, want success", got)
	}
	if got := len(transactions(t)); got != 0 {
		t.Errorf("got %d transactions after wipe, want 0", got)
	}
}

func TestNow(t *testing.T) {
	setup(t)
	if got := run(t, &nowCmd{}, "-set", "2025-03-15T10:00:00Z"); got != subcommands.ExitSuccess {
		t.Fatalf("now -set = %v, want success", got)
	}
	run(t, &addCmd{}, "-d", "2025-03-14", "3", "Café")
	if got := run(t, &nowCmd{}, "-next-month"); got != subcommands.ExitSuccess {
		t.Fatalf("now -next-month = %v, want success", got)
	}
	// March is closed when the book moves to April.
	if got := len(transactions(t)); got != 0 {
		t.Errorf("got %d transactions, want March archived", got)
	}
	db, err := store.Open(dbPath, currency)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, ok, _ := db.Snapshot(date.Month{Year: 2025, Month: 3}); !ok {
		t.Errorf("March 2025 has no snapshot")
	}
	if got := run(t, &nowCmd{}, "-set", "not a time"); got != subcommands.ExitUsageError {
		t.Errorf("now -set invalid = %v, want a usage error", got)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("POCKET_TEST_STRING", "value")
	t.Setenv("POCKET_TEST_INT", "42")
	t.Setenv("POCKET_TEST_BAD_INT", "forty-two")

	if got := getEnv("POCKET_TEST_STRING", "default"); got != "value" {
		t.Errorf("getEnv() = %q, want %q", got, "value")
	}
	if got := getEnv("POCKET_TEST_UNSET", "default"); got != "default" {
		t.Errorf("getEnv(unset) = %q, want %q", got, "default")
	}
	if got := getEnvAsInt("POCKET_TEST_INT", 1); got != 42 {
		t.Errorf("getEnvAsInt() = %d, want 42", got)
	}
	if got := getEnvAsInt("POCKET_TEST_BAD_INT", 1); got != 1 {
		t.Errorf("getEnvAsInt(invalid) = %d, want the default", got)
	}
}

func TestLoadEnv(t *testing.T) {
	env := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(env, []byte("POCKET_TEST_DOTENV=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("POCKET_TEST_DOTENV", "")
	os.Unsetenv("POCKET_TEST_DOTENV")
	if err := LoadEnv(env); err != nil {
		t.Fatalf("LoadEnv() = %v", err)
	}
	if got := os.Getenv("POCKET_TEST_DOTENV"); got != "from-file" {
		t.Errorf("POCKET_TEST_DOTENV = %q, want %q", got, "from-file")
	}
	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadEnv(missing) = %v, want nil", err)
	}
}

func TestSMTPConfig(t *testing.T) {
	t.Setenv("POCKET_SMTP_HOST", "smtp.example.com")
	t.Setenv("POCKET_SMTP_PORT", "465")
	t.Setenv("POCKET_SMTP_TO", "a@example.com, b@example.com,")

	cfg := smtpConfig()
	if cfg.Host != "smtp.example.com" || cfg.Port != "465" {
		t.Errorf("smtpConfig() = %+v, want the host and port of the environment", cfg)
	}
	if len(cfg.To) != 2 || cfg.To[1] != "b@example.com" {
		t.Errorf("To = %q, want two recipients", cfg.To)
	}
}

func TestCompletion(t *testing.T) {
	c := subcommands.NewCommander(flag.NewFlagSet("pkt", flag.ContinueOnError), "pkt")
	Register(c)
	root := Completion(c)
	for _, name := range []string{"add", "month", "serve", "topic"} {
		if root.Sub[name] == nil {
			t.Errorf("no completion for %q", name)
		}
	}
	if _, ok := root.Sub["add"].Flags["income"]; !ok {
		t.Errorf("add completion has no -income flag")
	}
	if root.Sub["topic"].Args == nil {
		t.Errorf("topic completion has no topics")
	}
}

func TestTopic(t *testing.T) {
	setup(t)
	if got := run(t, &topicCmd{}); got != subcommands.ExitSuccess {
		t.Errorf("topic = %v, want the readme", got)
	}
	if got := run(t, &topicCmd{}, "loans", "dates"); got != subcommands.ExitSuccess {
		t.Errorf("topic loans dates = %v, want success", got)
	}
	if got := run(t, &topicCmd{}, "unknown"); got != subcommands.ExitFailure {
		t.Errorf("topic unknown = %v, want a failure", got)
	}
}
