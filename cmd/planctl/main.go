package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MBFrosty/planctl/internal/coordinator"
	"github.com/MBFrosty/planctl/internal/display"
	"github.com/MBFrosty/planctl/internal/gitdriver"
	"github.com/MBFrosty/planctl/internal/planconfig"
	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planlock"
	"github.com/MBFrosty/planctl/internal/planstore"
	"github.com/MBFrosty/planctl/internal/watch"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "project-root",
			Aliases: []string{"r"},
			Usage:   "Override project root (default: discovered from cwd)",
		},
	}
	watchFlag := &cli.BoolFlag{
		Name:  "watch",
		Usage: "Keep running and re-render on plan.yaml/.epic-marker changes",
	}

	app := &cli.App{
		Name:                   "planctl",
		Usage:                  "Coordinate an epic/feature plan's DAG across git worktrees",
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the full plan graph and blocked registry",
				Flags: append(append([]cli.Flag{}, commonFlags...), watchFlag),
				Action: func(c *cli.Context) error {
					co, root, err := newCoordinator(c)
					if err != nil {
						return err
					}
					render := func() {
						g, err := co.Status()
						if err != nil {
							pterm.Error.Println(err)
							return
						}
						display.PrintStatus(g)
					}
					if c.Bool("watch") {
						return watch.Watch(c.Context, root, worktreeArg(root), render)
					}
					render()
					return nil
				},
			},
			{
				Name:  "next",
				Usage: "Show the single next runnable task",
				Flags: append(append([]cli.Flag{}, commonFlags...), watchFlag),
				Action: func(c *cli.Context) error {
					co, root, err := newCoordinator(c)
					if err != nil {
						return err
					}
					render := func() {
						task, err := co.Next()
						if err != nil {
							pterm.Error.Println(err)
							return
						}
						display.PrintNext(task)
					}
					if c.Bool("watch") {
						return watch.Watch(c.Context, root, worktreeArg(root), render)
					}
					render()
					return nil
				},
			},
			{
				Name:  "parallel",
				Usage: "List every ready, pending epic",
				Flags: commonFlags,
				Action: func(c *cli.Context) error {
					co, _, err := newCoordinator(c)
					if err != nil {
						return err
					}
					epics, err := co.Parallel()
					if err != nil {
						return err
					}
					display.PrintParallel(epics)
					return nil
				},
			},
			{
				Name:      "complete",
				Usage:     "Mark a task completed",
				ArgsUsage: "<task-id>",
				Flags:     commonFlags,
				Action: func(c *cli.Context) error {
					co, _, err := newCoordinator(c)
					if err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return &planerrors.InvalidInputError{Detail: "complete requires a task id"}
					}
					if err := co.Complete(id); err != nil {
						return err
					}
					pterm.Success.Printf("Marked %s completed\n", id)
					return nil
				},
			},
			{
				Name:      "block",
				Usage:     "Mark a task blocked with a reason",
				ArgsUsage: "<task-id> <reason>",
				Flags:     commonFlags,
				Action: func(c *cli.Context) error {
					co, _, err := newCoordinator(c)
					if err != nil {
						return err
					}
					id := c.Args().First()
					reason := strings.Join(c.Args().Tail(), " ")
					if id == "" || reason == "" {
						return &planerrors.InvalidInputError{Detail: "block requires a task id and a reason"}
					}
					if err := co.Block(id, reason); err != nil {
						return err
					}
					pterm.Success.Printf("Blocked %s: %s\n", id, reason)
					return nil
				},
			},
			{
				Name:  "expand",
				Usage: "Create worktrees for every ready epic",
				Flags: append(append([]cli.Flag{}, commonFlags...), []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "verify",
						Usage: "Verify command to run in each new worktree (repeat flag for each argv token)",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Roll back worktrees this invocation created if verification fails",
					},
				}...),
				Action: func(c *cli.Context) error {
					co, _, err := newCoordinator(c)
					if err != nil {
						return err
					}
					var verify *coordinator.VerifyOptions
					if cmd := c.StringSlice("verify"); len(cmd) > 0 {
						verify = &coordinator.VerifyOptions{Command: cmd, Strict: c.Bool("strict")}
					} else if c.Bool("strict") {
						return &planerrors.InvalidInputError{Detail: "--strict requires --verify"}
					}
					progress := display.StartProgress("Expanding ready epics...")
					result, err := co.Expand(c.Context, verify)
					if err != nil {
						progress.Fail(err.Error())
						return err
					}
					progress.Success()
					display.PrintExpandSummary(result.Created)
					return nil
				},
			},
			{
				Name:      "merge",
				Usage:     "Merge completed epics back to the base branch",
				ArgsUsage: "[epic-id...]",
				Flags: append(append([]cli.Flag{}, commonFlags...), &cli.StringFlag{
					Name:  "base-branch",
					Usage: "Target branch (default: current branch at the base)",
				}),
				Action: func(c *cli.Context) error {
					co, _, err := newCoordinator(c)
					if err != nil {
						return err
					}
					progress := display.StartProgress("Merging epics...")
					result, err := co.Merge(c.Context, c.Args().Slice(), c.String("base-branch"))
					if err != nil {
						progress.Fail(err.Error())
						return err
					}
					progress.Success()
					display.PrintMergeSummary(result.TargetBranch, result.Merged)
					return nil
				},
			},
			{
				Name:      "cleanup",
				Usage:     "Remove worktrees of completed epics",
				ArgsUsage: "[epic-id...]",
				Flags:     commonFlags,
				Action: func(c *cli.Context) error {
					co, _, err := newCoordinator(c)
					if err != nil {
						return err
					}
					result, err := co.Cleanup(c.Context, c.Args().Slice())
					if err != nil {
						return err
					}
					display.PrintCleanupSummary(result.Removed)
					return nil
				},
			},
			{
				Name:  "sync",
				Usage: "Run the bidirectional worktree/base sync protocol",
				Flags: append(append([]cli.Flag{}, commonFlags...), &cli.StringFlag{
					Name:  "direction",
					Usage: "from-base, to-base, both (worktree) or scan (base); default auto-detected",
				}),
				Action: func(c *cli.Context) error {
					co, _, err := newCoordinator(c)
					if err != nil {
						return err
					}
					result, err := co.Sync(c.Context, c.String("direction"))
					if err != nil {
						return err
					}
					display.PrintSyncSummary(result.Direction, result.Scanned, len(result.Updates))
					return nil
				},
			},
			{
				Name:  "reboot",
				Usage: "Print the reboot context for a fresh agent session",
				Flags: commonFlags,
				Action: func(c *cli.Context) error {
					co, root, err := newCoordinator(c)
					if err != nil {
						return err
					}
					summary, err := co.Reboot(planconfig.ReadGoal(root))
					if err != nil {
						return err
					}
					display.PrintRebootSummary(summary.ProjectGoal, summary.CompletedEpics, summary.RemainingEpics,
						summary.CompletedFeatures, summary.RemainingFeatures, len(summary.Blocked))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(exitMessage(err))
		os.Exit(exitCode(err))
	}
}

// newCoordinator resolves the project root and returns a Coordinator
// bound to a real ExecDriver.
func newCoordinator(c *cli.Context) (*coordinator.Coordinator, string, error) {
	root, err := planconfig.ResolveProjectRoot(c.String("project-root"))
	if err != nil {
		return nil, "", fmt.Errorf("resolving project root: %w", err)
	}
	co := coordinator.New(root, &gitdriver.ExecDriver{})
	return co, root, nil
}

// worktreeArg returns root itself when root is a worktree, else "" — the
// shape watch.Watch expects for its optional second watch target.
func worktreeArg(root string) string {
	if planconfig.IsWorktree(root) {
		return root
	}
	return ""
}

func exitMessage(err error) string {
	return err.Error()
}

// exitCode maps the typed error taxonomy to a process exit status so a
// caller can branch on failure kind without parsing error text.
func exitCode(err error) int {
	var notFound *planerrors.NotFoundError
	var schemaErr *planstore.SchemaErrorList
	var parseErr *planstore.ParseError
	var lockTimeout *planlock.TimeoutError
	var gitErr *planerrors.GitError
	var checkoutFailed *planerrors.CheckoutFailedError
	var mergeFailed *planerrors.MergeFailedError
	var removeFailed *planerrors.RemoveFailedError
	var ignoreFailed *planerrors.IgnoreUpdateFailedError
	var baselineFailed *planerrors.BaselineFailedError
	var notAWorktree *planerrors.NotAWorktreeError
	var baseNotFound *planerrors.BaseNotFoundError
	var directionMismatch *planerrors.DirectionMismatchError
	var invalidInput *planerrors.InvalidInputError

	switch {
	case errors.As(err, &notFound):
		return 4
	case errors.As(err, &schemaErr), errors.As(err, &parseErr):
		return 5
	case errors.As(err, &lockTimeout):
		return 6
	case errors.As(err, &checkoutFailed), errors.As(err, &mergeFailed), errors.As(err, &removeFailed), errors.As(err, &gitErr):
		return 7
	case errors.As(err, &ignoreFailed):
		return 8
	case errors.As(err, &baselineFailed):
		return 9
	case errors.As(err, &notAWorktree), errors.As(err, &baseNotFound):
		return 10
	case errors.As(err, &directionMismatch), errors.As(err, &invalidInput):
		return 2
	default:
		return 1
	}
}
