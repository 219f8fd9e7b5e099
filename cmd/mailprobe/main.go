// Command mailprobe checks email addresses for deliverability and writes
// valid/invalid spreadsheets.
//
//	mailprobe [-config mailprobe.yaml] [-file list.xlsx] [-workers 50] [address ...]
//
// Without -file or arguments it prompts for addresses until "done".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/optimode/mailprobe"
	"github.com/optimode/mailprobe/internal/config"
	"github.com/optimode/mailprobe/internal/input"
	"github.com/optimode/mailprobe/internal/report"
	"github.com/optimode/mailprobe/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mailprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	file := fs.String("file", "", "read addresses from a .txt, .csv or .xlsx file")
	workers := fs.Int("workers", 0, "concurrent checks (default from config, 50)")
	level := fs.String("level", "", "deepest check to run: syntax, dns, smtp or catchall")
	outDir := fs.String("out", "", "report directory (default from config, outputs)")
	csvPath := fs.String("csv", "", "also write every outcome to this CSV file")
	quiet := fs.Bool("quiet", false, "no progress bar")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *csvPath != "" {
		cfg.Output.CSVFile = *csvPath
	}

	logger, closeLog, err := newLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "log: %v\n", err)
		return 1
	}
	defer closeLog()

	v, err := newValidator(cfg, *level, logger)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	var addresses []string
	switch {
	case *file != "":
		addresses, err = input.ReadFile(*file)
	case fs.NArg() > 0:
		addresses, err = input.ReadLines(strings.NewReader(strings.Join(fs.Args(), "\n")))
	default:
		addresses, err = input.Prompt(stdin, stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "input: %v\n", err)
		return 1
	}
	if len(addresses) == 0 {
		fmt.Fprintln(stdout, "No emails entered.")
		return 0
	}

	logger.WithFields(logrus.Fields{
		"addresses": len(addresses),
		"workers":   cfg.Workers,
	}).Info("validation started")

	progress := io.Discard
	if !*quiet {
		progress = stderr
	}
	bar := progressbar.NewOptions(len(addresses),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("Processed"),
		progressbar.OptionShowCount(),
	)

	outcomes, err := v.RunAll(ctx, addresses, mailprobe.BatchOptions{
		Workers: cfg.Workers,
		Progress: func(int, int) {
			_ = bar.Add(1)
		},
	})
	fmt.Fprintln(progress)
	interrupted := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	if err != nil && !interrupted {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	if interrupted {
		fmt.Fprintf(stderr, "interrupted: %d of %d addresses checked\n", len(outcomes), len(addresses))
	} else {
		fmt.Fprintln(stdout, "Validation complete.")
	}

	if err := writeReports(cfg.Output, outcomes, stdout); err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "\nDetailed results:")
	printOutcomes(stdout, outcomes)
	printSummary(stdout, outcomes)

	logger.WithField("checked", len(outcomes)).Info("validation finished")
	if interrupted {
		return 1
	}
	return 0
}

func newLogger(cfg config.LogConfig, stderr io.Writer) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetOutput(stderr)

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: cfg.File != ""})
	}

	if cfg.File == "" {
		return logger, func() {}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(f)
	return logger, func() { _ = f.Close() }, nil
}

// newValidator maps the config onto the builder. level caps the pipeline
// depth; empty means whatever the config enables.
func newValidator(cfg *config.Config, level string, logger logrus.FieldLogger) (*mailprobe.Validator, error) {
	smtpOn := cfg.SMTP.Enabled
	catchAllOn := cfg.CatchAll.Enabled && smtpOn
	dnsOn := true

	switch strings.ToLower(level) {
	case "":
	case types.LevelSyntax:
		dnsOn, smtpOn, catchAllOn = false, false, false
	case types.LevelDNS:
		smtpOn, catchAllOn = false, false
	case types.LevelSMTP:
		smtpOn, catchAllOn = true, false
	case types.LevelCatchAll:
		smtpOn, catchAllOn = true, true
	default:
		return nil, fmt.Errorf("unknown level %q", level)
	}

	v := mailprobe.New().WithLogger(logger)
	if dnsOn {
		v.WithDNS(mailprobe.DNSOptions{
			Timeout:      cfg.DNS.Timeout(),
			MaxAttempts:  cfg.DNS.MaxAttempts,
			BackoffBase:  cfg.DNS.Backoff(),
			Nameservers:  cfg.DNS.Nameservers,
			SuggestTypos: cfg.DNS.SuggestTypos,
		})
	}
	if smtpOn {
		v.WithSMTP(mailprobe.SMTPOptions{
			HeloDomain:     cfg.SMTP.HeloDomain,
			MailFrom:       cfg.SMTP.MailFrom,
			Port:           cfg.SMTP.Port,
			ConnectTimeout: cfg.SMTP.ConnectTimeout(),
			SessionTimeout: cfg.SMTP.SessionTimeout(),
			ProxyURL:       cfg.SMTP.ProxyURL,
			RateLimit:      cfg.SMTP.RateLimit,
			Burst:          cfg.SMTP.Burst,
		})
	}
	if catchAllOn {
		v.WithCatchAll(mailprobe.CatchAllOptions{
			MailFrom:  cfg.CatchAll.MailFrom,
			GmailFrom: cfg.CatchAll.GmailFrom,
		})
	}
	return v, nil
}

func writeReports(cfg config.OutputConfig, outcomes []mailprobe.Outcome, stdout io.Writer) error {
	written, err := report.WriteXLSX(outcomes,
		filepath.Join(cfg.Dir, cfg.ValidFile),
		filepath.Join(cfg.Dir, cfg.InvalidFile),
	)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintf(stdout, "Results saved to '%s'\n", p)
	}

	if cfg.CSVFile == "" {
		return nil
	}
	f, err := os.Create(cfg.CSVFile)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, outcomes); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Results saved to '%s'\n", cfg.CSVFile)
	return nil
}

func printOutcomes(w io.Writer, outcomes []mailprobe.Outcome) {
	for _, o := range outcomes {
		var c *color.Color
		switch o.Status {
		case mailprobe.StatusValid:
			c = color.New(color.FgGreen)
		case mailprobe.StatusCatchAll:
			c = color.New(color.FgYellow)
		default:
			c = color.New(color.FgRed)
		}
		line := fmt.Sprintf("%s: %s", o.Address, c.Sprint(o.Status.Label()))
		if o.Suggestion != "" {
			line += fmt.Sprintf(" (did you mean %s?)", o.Suggestion)
		}
		fmt.Fprintln(w, line)
	}
}

func printSummary(w io.Writer, outcomes []mailprobe.Outcome) {
	counts := map[mailprobe.Status]int{}
	for _, o := range outcomes {
		counts[o.Status]++
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Status", "Count"})
	for _, s := range types.Statuses {
		t.AppendRow(table.Row{s.Label(), counts[s]})
	}
	t.AppendFooter(table.Row{"Total", len(outcomes)})
	t.Render()
}
