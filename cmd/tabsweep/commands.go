package main

import (
	"context"
	"io"

	"github.com/entrhq/tabsweep/pkg/executor/cli"
	"github.com/entrhq/tabsweep/pkg/types"
)

// action maps a one-shot command onto the action the cli executor runs.
func (c *Config) action() *types.Action {
	switch c.Command {
	case cmdSearch:
		return types.NewSearchAction("", c.query())
	case cmdDedup:
		return types.NewScopedAction(types.ActionTypeDeduplicate, "")
	case cmdCloseUnbookmarked:
		return types.NewScopedAction(types.ActionTypeCloseUnbookmarked, "")
	default:
		return types.NewScopedAction(types.ActionTypeList, "")
	}
}

func (a *app) execute(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	switch a.config.Command {
	case cmdPopup:
		// The popup loads tabs itself so the spinner shows while it does.
		return a.popup.Run(ctx, a.session)

	case cmdShell:
		shell := cli.NewExecutor(a.session,
			cli.WithReader(stdin),
			cli.WithWriter(stdout),
			cli.WithScope(a.scope),
			cli.WithFormat(a.format),
			cli.WithVerbose(true),
		)
		return shell.Run(ctx)
	}

	executor := cli.NewExecutor(a.session,
		cli.WithWriter(stdout),
		cli.WithScope(a.scope),
		cli.WithFormat(a.format),
	)
	if err := executor.Do(ctx, types.NewScopedAction(types.ActionTypeReload, "")); err != nil {
		return err
	}

	action := a.config.action()
	a.logger.Debugf("running %s", action.Type)
	return executor.Do(ctx, action)
}
