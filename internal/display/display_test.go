package display

import (
	"testing"

	"github.com/MBFrosty/planctl/internal/planmodel"
)

func TestStatusIconCoversEveryStatus(t *testing.T) {
	for _, status := range []planmodel.Status{
		planmodel.StatusPending,
		planmodel.StatusInProgress,
		planmodel.StatusCompleted,
		planmodel.StatusBlocked,
	} {
		if got := StatusIcon(status); got == "" {
			t.Errorf("StatusIcon(%q) returned empty string", status)
		}
	}
}

func TestStartProgressUnderTestIsNotATerminal(t *testing.T) {
	// go test redirects stdout to a pipe/file, never a tty, so
	// StartProgress must fall back to the plain reporter rather than
	// starting a live spinner.
	reporter := StartProgress("doing work")
	if _, ok := reporter.(*plainReporter); !ok {
		t.Fatalf("expected *plainReporter under go test, got %T", reporter)
	}
	reporter.Success()
}

func TestStartProgressFailDoesNotPanic(t *testing.T) {
	reporter := StartProgress("doing work")
	reporter.Fail("boom")
}

func TestPrintFunctionsDoNotPanicOnEmptyInput(t *testing.T) {
	PrintStatus(&planmodel.Graph{})
	PrintNext(nil)
	PrintParallel(nil)
	PrintExpandSummary(nil)
	PrintMergeSummary("main", nil)
	PrintCleanupSummary(nil)
	PrintRebootSummary("", 0, 0, 0, 0, 0)
	PrintSyncSummary("scan", 0, 0)
}
