// Package main provides the rsvp binary, a terminal front end for a guest's
// invitation link.
//
// Usage:
//
//	rsvp -link <invitation URL> [-api <server URL>] [-qr] [attend|decline]
//
// Without an action argument rsvp reads "attend", "decline" or "quit" lines
// from stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/artpar/mingalaroo/internal/core/rsvp"
	"github.com/artpar/mingalaroo/internal/shell/rsvpclient"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	exitOK    = 0
	exitUsage = 2
	exitLink  = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rsvp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	link := fs.String("link", "", "Invitation link, e.g. https://mingalaroo.com/<owner>/?guest=jane-doe")
	apiURL := fs.String("api", "http://localhost:8080", "Mingalaroo server base URL")
	cooldown := fs.Duration("cooldown", rsvp.DefaultCooldown, "Minimum time between celebrations")
	timeout := fs.Duration("timeout", 10*time.Second, "HTTP request timeout")
	showQR := fs.Bool("qr", false, "Print the invitation link as a QR code")
	verbose := fs.Bool("v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *link == "" || fs.NArg() > 1 {
		fmt.Fprintln(stderr, "usage: rsvp -link <invitation URL> [-api <server URL>] [attend|decline]")
		return exitUsage
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	target, err := guest.ResolveLink(*link)
	if err != nil || target.Segment == "" {
		fmt.Fprintf(stderr, "invalid invitation link %q\n", *link)
		return exitLink
	}

	if *showQR {
		q, err := qrcode.New(*link, qrcode.Medium)
		if err != nil {
			fmt.Fprintf(stderr, "render qr code: %v\n", err)
		} else {
			fmt.Fprintln(stdout, q.ToSmallString(false))
		}
	}

	client := rsvpclient.NewClient(rsvpclient.Config{
		BaseURL: *apiURL,
		Segment: target.Segment,
		Timeout: *timeout,
	}, logger)

	effects := &terminalEffects{out: stdout}
	session := rsvp.NewSession(rsvp.Config{
		Invitation: target.Invitation,
		Updater:    client,
		Effects:    effects,
		Cooldown:   *cooldown,
		Logger:     logger,
	})

	if greeting := target.Invitation.Greeting(); greeting != "" {
		fmt.Fprintln(stdout, greeting)
	}
	fmt.Fprintln(stdout, "You are invited to our wedding.")

	if fs.NArg() == 1 {
		if !handle(ctx, session, fs.Arg(0), stdout) {
			fmt.Fprintf(stderr, "unknown action %q\n", fs.Arg(0))
			return exitUsage
		}
		if !target.Invitation.Known {
			return exitLink
		}
		return exitOK
	}

	scanner := bufio.NewScanner(stdin)
	for {
		effects.prompt()
		if !scanner.Scan() {
			break
		}
		action := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if action == "quit" || action == "q" || action == "exit" {
			break
		}
		if action == "" {
			continue
		}
		if !handle(ctx, session, action, stdout) {
			fmt.Fprintln(stdout, "Please type attend, decline or quit.")
		}
		if ctx.Err() != nil {
			break
		}
	}
	return exitOK
}

// handle runs one action and reports whether it was recognized.
func handle(ctx context.Context, session *rsvp.Session, action string, out io.Writer) bool {
	var outcome rsvp.Outcome
	switch action {
	case "attend", "a", "yes":
		outcome = session.Attend(ctx)
	case "decline", "d", "no":
		outcome = session.Decline(ctx)
	default:
		return false
	}
	if msg := outcomeMessage(outcome); msg != "" {
		fmt.Fprintln(out, msg)
	}
	return true
}

func outcomeMessage(o rsvp.Outcome) string {
	switch o {
	case rsvp.OutcomeSubmitted:
		return "Your answer has been recorded."
	case rsvp.OutcomeFailed:
		return "We could not record your answer. Please try again later."
	case rsvp.OutcomeIgnored:
		return "Already celebrating, hold on a moment."
	case rsvp.OutcomeDropped:
		return "Still sending your previous answer."
	default:
		return ""
	}
}
