package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/amaumene/imagesearch/internal/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func searchCMD() *cobra.Command {
	var (
		pages     int
		retries   int
		noPersist bool
		asJSON    bool
	)
	var search = &cobra.Command{
		Use:   "search <query>",
		Short: "Search images and video clips once and print the merged results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			a, err := newApp(ctx, !noPersist)
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			if err := withRetries(ctx, retries, a.logger, func() error {
				return a.session.SubmitQuery(ctx, query)
			}, a.session.Refresh); err != nil {
				return err
			}
			for i := 1; i < pages; i++ {
				if err := withRetries(ctx, retries, a.logger, func() error {
					return a.session.OnScrollEnd(ctx)
				}, a.session.Refresh); err != nil {
					return err
				}
			}

			state := a.session.State()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(state)
			}
			renderHeader(out, state)
			renderItems(out, state.Items)
			return nil
		},
	}
	search.Flags().IntVar(&pages, "pages", 1, "number of pages to walk through (each page replaces the previous one)")
	search.Flags().IntVar(&retries, "retries", 0, "retry a failed fetch this many times with exponential backoff")
	search.Flags().BoolVar(&noPersist, "no-persist", false, "keep favorites and keyword in memory only")
	search.Flags().BoolVar(&asJSON, "json", false, "print the session state as JSON")

	return search
}

// withRetries runs first once and, while it keeps failing, retry up to
// retries more times. Input errors are not retried.
func withRetries(ctx context.Context, retries int, logger *logrus.Logger, first func() error, retry func(context.Context) error) error {
	attempt := 0
	op := func() error {
		attempt++
		var err error
		if attempt == 1 {
			err = first()
		} else {
			err = retry(ctx)
		}
		if errors.Is(err, models.ErrEmptyQuery) || errors.Is(err, models.ErrSessionClosed) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)), ctx)
	return backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		logger.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"wait":    wait.String(),
		}).Warn("Search failed, retrying")
	})
}
