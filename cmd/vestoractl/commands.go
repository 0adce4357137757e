package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

var commands = []subcommands.Command{
	&syncCmd{},
	&reconcileCmd{},
	&summaryCmd{},
}

// withApp opens the app for the duration of fn and reports errors the way
// every command does.
func withApp(fn func(*app) error) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if err := fn(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type syncCmd struct {
	owner string
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "recompute one owner's balance row" }
func (*syncCmd) Usage() string {
	return `vestoractl sync -owner <id>

  Recomputes the owner's balance totals from their assets. Available cash is kept.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "owner id")
}

func (c *syncCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *app) error {
		balance, err := a.balances.Synchronize(ctx, c.owner)
		if err != nil {
			return err
		}
		printMarkdown(balanceMarkdown(balance, a.currency))
		return nil
	})
}

type reconcileCmd struct{}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "recompute every owner's balance row" }
func (*reconcileCmd) Usage() string {
	return `vestoractl reconcile

  Synchronizes every owner that has assets or a balance row. Exits non-zero
  when any owner fails.
`
}

func (*reconcileCmd) SetFlags(*flag.FlagSet) {}

func (*reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *app) error {
		result, err := a.reconciler.RunOnce(ctx)
		if err != nil {
			return err
		}
		printMarkdown(reconcileMarkdown(result))
		if len(result.Failures) > 0 {
			return fmt.Errorf("%d of %d owners failed", len(result.Failures), result.Owners)
		}
		return nil
	})
}

type summaryCmd struct {
	owner string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display an owner's portfolio summary" }
func (*summaryCmd) Usage() string {
	return `vestoractl summary -owner <id>

  Displays the owner's totals per category and flags a stale balance row.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "owner id")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *app) error {
		dashboard, err := a.dashboard.GetDashboard(ctx, c.owner)
		if err != nil {
			return err
		}
		printMarkdown(summaryMarkdown(c.owner, dashboard, a.currency))
		return nil
	})
}
