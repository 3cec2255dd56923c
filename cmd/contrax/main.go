package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/penguicon/contrax/internal/adapters/apiclient"
	"github.com/penguicon/contrax/internal/adapters/console"
	"github.com/penguicon/contrax/internal/app/rsvptoggle"
	"github.com/penguicon/contrax/internal/app/submissionlist"
	"github.com/penguicon/contrax/internal/domain"
	"github.com/penguicon/contrax/internal/platform/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		configPath string
		apiURL     string
		viewerID   int
		rejected   bool
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("contrax", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to client YAML config (default: $"+config.ClientConfigEnv+")")
	flagSet.StringVar(&apiURL, "api", "", "API base URL (overrides api_base_url)")
	flagSet.IntVar(&viewerID, "viewer", -1, "viewer user id, 0 for anonymous (overrides viewer_id)")
	flagSet.BoolVar(&rejected, "rejected", false, "render the rejected list instead of the active one")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}

	var (
		cfg *config.ClientConfig
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadClientFile(configPath)
	} else {
		cfg, err = config.LoadClient()
	}
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if viewerID >= 0 {
		cfg.ViewerID = viewerID
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	client, err := apiclient.New(apiclient.Config{
		BaseURL:     cfg.APIBaseURL,
		ViewerID:    domain.UserID(cfg.ViewerID),
		Timeout:     cfg.Timeout,
		RSVPRetries: cfg.RSVPRetries,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return fmt.Errorf("missing command")
	}
	switch rest[0] {
	case "render":
		if len(rest) != 1 {
			return fmt.Errorf("render takes no arguments")
		}
		return runRender(ctx, client, cfg, rejected, stdout, logger)
	case "rsvp":
		if len(rest) != 2 {
			return fmt.Errorf("usage: contrax rsvp <submission-id>")
		}
		id, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid submission id %q", rest[1])
		}
		return runRSVP(ctx, client, cfg, domain.SubmissionID(id), stdout, logger)
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

// page is the viewer's profile plus a live list of one board.
type page struct {
	viewer domain.Viewer
	points int
	list   *submissionlist.List
}

func loadPage(ctx context.Context, client *apiclient.Client, cfg *config.ClientConfig, rejected bool, logger *slog.Logger) (*page, error) {
	profile, err := client.Viewer(ctx)
	if err != nil {
		return nil, fmt.Errorf("load viewer: %w", err)
	}
	board, err := client.FetchBoard(ctx)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}
	data := board.Active
	if rejected {
		data = board.Rejected
	}

	opts := listOptions(cfg)
	for _, d := range data {
		opts.Submissions = append(opts.Submissions, domain.NewSubmission(d))
	}
	list, err := submissionlist.New(opts, profile.Viewer, submissionlist.Config{Logger: logger})
	if err != nil {
		return nil, err
	}
	return &page{viewer: profile.Viewer, points: profile.Points, list: list}, nil
}

func listOptions(cfg *config.ClientConfig) submissionlist.Options {
	opts := submissionlist.DefaultOptions()
	t := cfg.Templates
	if t.SubmissionsTpl != "" {
		opts.SubmissionsTpl = t.SubmissionsTpl
	}
	if t.UserLinkTpl != "" {
		opts.UserLinkTpl = t.UserLinkTpl
	}
	if t.PresenterLinkTpl != "" {
		opts.PresenterLinkTpl = t.PresenterLinkTpl
	}
	if t.UserTextTpl != "" {
		opts.UserTextTpl = t.UserTextTpl
	}
	return opts
}

func runRender(ctx context.Context, client *apiclient.Client, cfg *config.ClientConfig, rejected bool, stdout io.Writer, logger *slog.Logger) error {
	p, err := loadPage(ctx, client, cfg, rejected, logger)
	if err != nil {
		return err
	}
	defer p.list.Close()
	return p.list.Render(stdout)
}

func runRSVP(ctx context.Context, client *apiclient.Client, cfg *config.ClientConfig, id domain.SubmissionID, stdout io.Writer, logger *slog.Logger) error {
	p, err := loadPage(ctx, client, cfg, false, logger)
	if err != nil {
		return err
	}
	defer p.list.Close()

	s, ok := p.list.Submission(id)
	if !ok {
		return fmt.Errorf("submission %d is not on the active board", id)
	}

	p.list.OnRowChange(func(row submissionlist.Row) {
		if !row.Updating {
			fmt.Fprintf(stdout, "submission %d: %s would attend (%s)\n", row.ID, row.RSVPCount, row.RSVPIcon)
		}
	})

	prompter := console.NewPrompter(stdout, logger)
	points := rsvptoggle.NewPoints(p.points)
	ctrl := rsvptoggle.NewController(client, points, rsvptoggle.Options{Login: prompter, Errors: prompter, Logger: logger})

	outcome, err := ctrl.Toggle(ctx, s, p.viewer)
	fmt.Fprintf(stdout, "%s; %d rsvp points left\n", outcome, points.Value())
	return err
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `contrax shows the convention submission board and toggles "would attend" votes.

Usage:
  contrax [flags] render          print the board as an HTML fragment
  contrax [flags] rsvp <id>       toggle your vote on a submission

Flags:
%s`, flagSet.FlagUsages())
}
