// Package display renders the command surface's terminal output: status
// tables, section headers, and spinners around git/verify subprocess
// calls.
package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/MBFrosty/planctl/internal/planmodel"
)

// StatusIcon returns a styled status string with an icon prefix for one
// of the four plan statuses.
func StatusIcon(status planmodel.Status) string {
	switch status {
	case planmodel.StatusCompleted:
		return pterm.Green("✔ " + string(status))
	case planmodel.StatusInProgress:
		return pterm.Cyan("▶ " + string(status))
	case planmodel.StatusPending:
		return pterm.Gray("○ " + string(status))
	case planmodel.StatusBlocked:
		return pterm.Yellow("⚑ " + string(status))
	default:
		return string(status)
	}
}

// PrintStatus renders the full graph as a table of epics and their
// features, plus the blocked registry.
func PrintStatus(g *planmodel.Graph) {
	pterm.DefaultSection.Println("Plan status")

	rows := pterm.TableData{{"Epic", "Status", "Depends on", "Worktree"}}
	for _, e := range g.Epics {
		rows = append(rows, []string{e.ID + " — " + e.Name, StatusIcon(e.Status), strings.Join(e.DependsOn, ", "), e.Worktree})
		for _, f := range e.Features {
			rows = append(rows, []string{"  " + f.ID + " — " + f.Name, StatusIcon(f.Status), strings.Join(f.DependsOn, ", "), ""})
		}
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if len(g.Blocked) > 0 {
		pterm.Println()
		pterm.DefaultSection.Println("Blocked")
		blockedRows := pterm.TableData{{"Task", "Reason", "Blocked at"}}
		for _, b := range g.Blocked {
			blockedRows = append(blockedRows, []string{b.TaskID, b.Reason, b.BlockedAt.Format(time.RFC3339)})
		}
		pterm.DefaultTable.WithHasHeader().WithData(blockedRows).Render()
	}
}

// PrintNext renders the single next runnable task, or a "nothing
// runnable" notice.
func PrintNext(task planmodel.Task) {
	if task == nil {
		pterm.Info.Println("Nothing runnable right now.")
		return
	}
	pterm.DefaultSection.Println("Next")
	pterm.Println(pterm.Cyan("  ▶  ") + task.TaskID())
}

// PrintParallel renders every ready, pending epic.
func PrintParallel(epics []*planmodel.Epic) {
	pterm.DefaultSection.Println("Parallel")
	if len(epics) == 0 {
		pterm.Info.Println("No epics are ready to expand.")
		return
	}
	for _, e := range epics {
		pterm.Println(pterm.Cyan("  ▶  ") + e.ID + " — " + e.Name)
	}
}

// Spinner starts a spinner with the default braille sequence, used
// around subprocess calls (git, verify commands).
func Spinner(label string) *pterm.SpinnerPrinter {
	spinner, _ := pterm.DefaultSpinner.Start(label)
	return spinner
}

// ProgressReporter reports the outcome of a long-running step, switching
// between a live spinner and a plain info line depending on whether
// stdout is a terminal.
type ProgressReporter interface {
	Fail(message string)
	Success()
}

type plainReporter struct{ label string }

func (p *plainReporter) Fail(message string) { pterm.Error.Printf("%s: %s\n", p.label, message) }
func (p *plainReporter) Success()            { pterm.Success.Println(p.label + " done") }

type spinnerReporter struct{ spinner *pterm.SpinnerPrinter }

func (s *spinnerReporter) Fail(message string) { s.spinner.Fail(message) }
func (s *spinnerReporter) Success()            { s.spinner.Success() }

// StartProgress begins reporting label's progress, live-animated when
// stdout is a terminal and a single plain line otherwise (CI/script
// redirection).
func StartProgress(label string) ProgressReporter {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.Info.Println(label)
		return &plainReporter{label: label}
	}
	return &spinnerReporter{spinner: Spinner(label)}
}

// PrintExpandSummary renders the epic ids Expand created.
func PrintExpandSummary(created []string) {
	pterm.DefaultSection.Println("Expand")
	if len(created) == 0 {
		pterm.Info.Println("No ready epics to expand.")
		return
	}
	for _, id := range created {
		pterm.Success.Printf("Created worktree for epic %s\n", id)
	}
}

// PrintMergeSummary renders the epics Merge integrated.
func PrintMergeSummary(targetBranch string, merged []string) {
	pterm.DefaultSection.Println("Merge")
	pterm.Info.Printf("Target branch: %s\n", targetBranch)
	if len(merged) == 0 {
		pterm.Info.Println("No completed epics to merge.")
		return
	}
	for _, id := range merged {
		pterm.Success.Printf("Integrated epic %s\n", id)
	}
}

// PrintCleanupSummary renders the worktree paths Cleanup removed.
func PrintCleanupSummary(removed []string) {
	pterm.DefaultSection.Println("Cleanup")
	if len(removed) == 0 {
		pterm.Info.Println("Nothing to remove.")
		return
	}
	for _, path := range removed {
		pterm.Success.Printf("Removed %s\n", path)
	}
}

// PrintRebootSummary renders the reboot context.
func PrintRebootSummary(goal string, completedEpics, remainingEpics, completedFeatures, remainingFeatures int, blocked int) {
	pterm.DefaultSection.Println("Reboot context")
	if goal != "" {
		pterm.Info.Printf("Project goal: %s\n", goal)
	}
	pterm.Println(fmt.Sprintf("  Epics:    %d completed, %d remaining", completedEpics, remainingEpics))
	pterm.Println(fmt.Sprintf("  Features: %d completed, %d remaining", completedFeatures, remainingFeatures))
	pterm.Println(fmt.Sprintf("  Blocked:  %d", blocked))
}

// PrintSyncSummary renders the outcome of a sync call.
func PrintSyncSummary(direction string, scanned int, updates int) {
	pterm.DefaultSection.Printf("Sync (%s)", direction)
	if direction == "scan" {
		pterm.Info.Printf("Scanned %d worktree(s), %d update(s) applied\n", scanned, updates)
		return
	}
	pterm.Success.Println("Sync complete")
}
