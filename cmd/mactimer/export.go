package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cdtdelta/mactimer/internal/bodyfile"
	"github.com/cdtdelta/mactimer/internal/database"
	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/query"
)

type storeFlags struct {
	driver string
	store  string
}

func (sf *storeFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sf.driver, "store-driver", "sqlite", "record store driver")
	cmd.Flags().StringVar(&sf.store, "store", "", "record database (path or DSN)")
}

func (sf *storeFlags) open() (database.Store, error) {
	if sf.store == "" {
		return nil, errors.New("--store is required")
	}
	s, err := database.OpenStore(sf.driver, sf.store)
	if err != nil {
		return nil, errors.Wrap(err, sf.store)
	}
	return s, nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		sf            storeFlags
		runID         string
		where         []string
		matchAny      bool
		after, before string
		limit         int
	)

	cmd := &cobra.Command{
		Use:   "export --store DB [flags]",
		Short: "Write the stored records of a run as bodyfile lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := buildFilter(where, matchAny, after, before)
			if err != nil {
				return err
			}

			store, err := sf.open()
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := selectRun(cmd, store, runID)
			if err != nil {
				return err
			}

			entries, err := store.QueryRecords(cmd.Context(), id, filter, limit, 0)
			if err != nil {
				return err
			}

			w := bodyfile.NewWriter(a.stdout)
			for i := range entries {
				if err := w.Write(&entries[i].Record); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}

	sf.add(cmd)
	cmd.Flags().StringVar(&runID, "run", "", "run ID (default: the latest run)")
	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, `filter such as "type=history", "detail~evil" or "to!=bob" (repeatable)`)
	cmd.Flags().BoolVar(&matchAny, "any", false, "match any filter instead of all")
	cmd.Flags().StringVar(&after, "after", "", "earliest time, epoch seconds or RFC 3339")
	cmd.Flags().StringVar(&before, "before", "", "latest time, epoch seconds or RFC 3339")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records (0 for all)")
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var sf storeFlags

	cmd := &cobra.Command{
		Use:   "runs --store DB",
		Short: "List the runs kept in a record database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sf.open()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Runs(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTARTED\tTYPE\tZONE\tSKEW\tRECORDS")
			for _, run := range runs {
				count, err := store.CountRecords(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
					run.ID, run.Started.UTC().Format(time.RFC3339), run.Type, run.Zone, run.Skew, count)
			}
			return tw.Flush()
		},
	}

	sf.add(cmd)
	return cmd
}

// selectRun resolves the --run flag, defaulting to the most recent run.
func selectRun(cmd *cobra.Command, store database.Store, flag string) (uuid.UUID, error) {
	if flag != "" {
		id, err := uuid.Parse(flag)
		if err != nil {
			return uuid.Nil, errors.Wrapf(err, "run %q", flag)
		}
		return id, nil
	}

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return uuid.Nil, err
	}
	if len(runs) == 0 {
		return uuid.Nil, errors.New("the store has no runs")
	}
	return runs[len(runs)-1].ID, nil
}

func buildFilter(where []string, matchAny bool, after, before string) (*query.Predicate, error) {
	logic := query.AND
	if matchAny {
		logic = query.OR
	}

	var preds []*query.Predicate
	for _, expr := range where {
		p, err := query.Parse(expr)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		preds = append(preds, p)
	}
	filter := query.Combine(preds, logic)

	from, err := parseBound(after)
	if err != nil {
		return nil, errors.Wrap(err, "--after")
	}
	to, err := parseBound(before)
	if err != nil {
		return nil, errors.Wrap(err, "--before")
	}
	return query.Combine([]*query.Predicate{filter, query.TimeRange(from, to)}, query.AND), nil
}

// parseBound reads epoch seconds or an RFC 3339 time. Empty means no bound.
func parseBound(s string) (model.Epoch, error) {
	if s == "" {
		return model.NoTime, nil
	}

	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t, terr := time.Parse(time.RFC3339, s)
		if terr != nil {
			return model.NoTime, errors.Errorf("%q is neither epoch seconds nor RFC 3339", s)
		}
		sec = t.Unix()
	}
	if sec <= 0 || sec > model.MaxEpoch {
		return model.NoTime, errors.Errorf("%q is outside the epoch range", s)
	}
	return model.Epoch(sec), nil
}
