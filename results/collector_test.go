package results

import (
	"testing"
)

func TestCollectorStartRun(t *testing.T) {
	collector := NewCollector()

	if collector.InProgress() {
		t.Fatal("Expected no run in progress")
	}

	run := collector.StartRun()
	if run.ID != 1 {
		t.Errorf("Expected run ID 1, got %d", run.ID)
	}
	if !collector.InProgress() {
		t.Error("Expected a run in progress")
	}
	if run.Store == nil || run.Logs == nil {
		t.Fatal("Expected run to be initialized")
	}
	if !run.Store.Tree().Empty() {
		t.Error("Expected an empty failure tree")
	}
}

func TestCollectorStartRunFinishesPrevious(t *testing.T) {
	collector := NewCollector()

	first := collector.StartRun()
	second := collector.StartRun()

	if first.EndTime.IsZero() {
		t.Error("Expected first run to be finished")
	}
	if second.ID != 2 {
		t.Errorf("Expected run ID 2, got %d", second.ID)
	}
	if collector.State().Finished != 1 {
		t.Errorf("Expected 1 finished run, got %d", collector.State().Finished)
	}
	if last := collector.State().LastRun; last == nil || last.ID != first.ID {
		t.Errorf("Expected last run record for run %d, got %+v", first.ID, last)
	}
	if collector.State().CurrentRun != second {
		t.Error("Expected second run to be current")
	}
}

func TestCollectorCurrentRunStartsImplicitly(t *testing.T) {
	collector := NewCollector()

	run, started := collector.CurrentRun()
	if !started {
		t.Error("Expected a run to be started")
	}

	again, started := collector.CurrentRun()
	if started {
		t.Error("Expected the existing run to be reused")
	}
	if again != run {
		t.Error("Expected the same run")
	}
}

func TestCollectorFinishRun(t *testing.T) {
	collector := NewCollector()

	if run := collector.FinishRun(); run != nil {
		t.Errorf("Expected nil when no run is active, got run %d", run.ID)
	}

	run := collector.StartRun()
	finished := collector.FinishRun()
	if finished != run {
		t.Fatal("Expected FinishRun to return the active run")
	}
	if finished.EndTime.IsZero() {
		t.Error("Expected EndTime to be set")
	}
	if collector.InProgress() {
		t.Error("Expected no run in progress")
	}

	// State is not shared across runs.
	next := collector.StartRun()
	if next.Store == run.Store || next.Logs == run.Logs {
		t.Error("Expected fresh per-run state")
	}
}

func TestCollectorReleasesFinishedRuns(t *testing.T) {
	collector := NewCollector()

	for i := 1; i <= 3; i++ {
		run := collector.StartRun()
		run.Logs.Append(BrowserInfo{ID: "b1", Name: "Chrome"}, "message")
		collector.FinishRun()
	}

	state := collector.State()
	if state.CurrentRun != nil {
		t.Error("Expected no run in progress")
	}
	if state.Started != 3 || state.Finished != 3 {
		t.Errorf("Expected 3 started and finished runs, got %d and %d", state.Started, state.Finished)
	}
	if state.LastRun == nil || state.LastRun.ID != 3 {
		t.Fatalf("Expected record of run 3, got %+v", state.LastRun)
	}
	if state.LastRun.EndTime.Before(state.LastRun.StartTime) {
		t.Error("Expected EndTime after StartTime")
	}
}
