package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/theleeeo/pgjobq/jobqueue"
	"github.com/theleeeo/pgjobq/model"
	"github.com/theleeeo/pgjobq/store"
)

// withQueue opens a pool for the duration of fn.
func (c *cli) withQueue(ctx context.Context, fn func(q *jobqueue.Queue) error) error {
	pool, err := newPool(ctx, c.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	return fn(jobqueue.NewQueue(store.NewPostgresStore(pool), nil))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("job id must be a positive integer, got %q", s)
	}
	return id, nil
}

func enqueueCmd(c *cli) *cobra.Command {
	var (
		retries int
		delay   time.Duration
		at      string
	)
	cmd := &cobra.Command{
		Use:   "enqueue <name> [args-json]",
		Short: "Add a job to the queue",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw json.RawMessage
			if len(args) == 2 {
				raw = json.RawMessage(args[1])
			}

			opts := &jobqueue.EnqueueOptions{}
			if cmd.Flags().Changed("retries") {
				opts.Retries = &retries
			}
			switch {
			case at != "" && delay != 0:
				return fmt.Errorf("--at and --delay are mutually exclusive")
			case at != "":
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				opts.StartAfter = &t
			case delay != 0:
				t := time.Now().Add(delay)
				opts.StartAfter = &t
			}

			return c.withQueue(cmd.Context(), func(q *jobqueue.Queue) error {
				id, err := q.Enqueue(cmd.Context(), args[0], raw, opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"id": id})
			})
		},
	}
	cmd.Flags().IntVar(&retries, "retries", jobqueue.DefaultRetries, "attempt budget")
	cmd.Flags().DurationVar(&delay, "delay", 0, "do not run before now+delay")
	cmd.Flags().StringVar(&at, "at", "", "do not run before this RFC 3339 time")
	return cmd
}

func getCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withQueue(cmd.Context(), func(q *jobqueue.Queue) error {
				j, err := q.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), jobqueue.NewJobView(j))
			})
		},
	}
}

func listCmd(c *cli) *cobra.Command {
	var (
		f            store.Filter
		state, sortS string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if state != "" {
				if f.State, err = model.ParseState(state); err != nil {
					return err
				}
			}
			if f.Sort, err = store.ParseSort(sortS); err != nil {
				return err
			}
			return c.withQueue(cmd.Context(), func(q *jobqueue.Queue) error {
				jobs, err := q.List(cmd.Context(), f)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), jobqueue.NewJobViews(jobs))
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&state, "state", "", "pending, running, completed or dead")
	flags.StringVar(&f.Name, "name", "", "only jobs with this name")
	flags.StringVar(&f.ErrorContains, "error", "", "only jobs whose last error contains this text")
	flags.IntVar(&f.Limit, "limit", 50, "page size")
	flags.IntVar(&f.Offset, "offset", 0, "rows to skip")
	flags.BoolVar(&f.IncludeArgs, "args", false, "include job args")
	flags.StringVar(&sortS, "sort", string(store.SortIDDesc), "id_asc, id_desc, started_desc, completed_desc or start_after_asc")
	return cmd
}

func deadCmd(c *cli) *cobra.Command {
	var (
		name  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "dead",
		Short: "List jobs that exhausted their retries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withQueue(cmd.Context(), func(q *jobqueue.Queue) error {
				jobs, err := q.Dead(cmd.Context(), name, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), jobqueue.NewJobViews(jobs))
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "only jobs with this name")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum jobs to show")
	return cmd
}

func statsCmd(c *cli) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count jobs per state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withQueue(cmd.Context(), func(q *jobqueue.Queue) error {
				counts, err := q.Counts(cmd.Context(), name)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), jobqueue.NewStatsView(name, counts))
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "only jobs with this name")
	return cmd
}

func requeueCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <id>",
		Short: "Enqueue a fresh copy of a dead job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.withQueue(cmd.Context(), func(q *jobqueue.Queue) error {
				newID, err := q.Requeue(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"id": newID, "requeued_from": id})
			})
		},
	}
}

func pruneCmd(c *cli) *cobra.Command {
	var (
		olderThan  time.Duration
		batchSize  int
		maxBatches int
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete completed jobs that finished before now-older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withQueue(cmd.Context(), func(q *jobqueue.Queue) error {
				n, err := q.Prune(cmd.Context(), olderThan, batchSize, maxBatches)
				c.log.Info("pruned completed jobs", "deleted", n, "older_than", olderThan)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"deleted": n})
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "retention for completed jobs")
	cmd.Flags().IntVar(&batchSize, "batch-size", 1000, "rows deleted per statement")
	cmd.Flags().IntVar(&maxBatches, "max-batches", 10, "statements per run")
	return cmd
}
