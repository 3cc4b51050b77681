package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"subnode/internal/history"
	"subnode/internal/job"
	"subnode/internal/services"
)

func openStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func newJob(id string) job.Job {
	style := job.DefaultStyleParameters()
	style.FontColor = "FFFF00"
	style.Position = job.PositionTop
	return job.Job{ID: id, SourcePath: "/videos/" + id + ".mp4", Style: style}
}

func TestBeginAndGet(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	if _, err := store.Begin(ctx, newJob("clip_1_abcd0123")); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	record, err := store.Get(ctx, "clip_1_abcd0123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != history.StatusRunning {
		t.Fatalf("expected running, got %q", record.Status)
	}
	if record.SourcePath != "/videos/clip_1_abcd0123.mp4" {
		t.Fatalf("unexpected source %q", record.SourcePath)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be populated")
	}
	style, err := record.Style()
	if err != nil {
		t.Fatalf("Style: %v", err)
	}
	if style.FontColor != "FFFF00" || style.Position != job.PositionTop {
		t.Fatalf("style did not round trip: %+v", style)
	}
}

func TestBeginDuplicateFails(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if _, err := store.Begin(ctx, newJob("dup")); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := store.Begin(ctx, newJob("dup")); err == nil {
		t.Fatal("expected duplicate id to fail")
	}
}

func TestCompleteStoresArtifacts(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if _, err := store.Begin(ctx, newJob("done")); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.UpdateStage(ctx, "done", services.StageEmbed); err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	artifacts := history.Artifacts{
		AudioPath:  "/a/done/done.wav",
		VTTPath:    "/s/done/done.vtt",
		OutputPath: "/o/done_output.mp4",
	}
	if err := store.Complete(ctx, "done", artifacts); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	record, err := store.Get(ctx, "done")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != history.StatusSucceeded || !record.Status.IsTerminal() {
		t.Fatalf("expected succeeded, got %q", record.Status)
	}
	if record.OutputPath != artifacts.OutputPath || record.VTTPath != artifacts.VTTPath || record.AudioPath != artifacts.AudioPath {
		t.Fatalf("artifacts not stored: %+v", record)
	}
	if record.SRTPath != "" || record.Stage != "" || record.ExitCode != nil {
		t.Fatalf("expected empty optional fields, got %+v", record)
	}
}

func TestFailRecordsClassification(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if _, err := store.Begin(ctx, newJob("broken")); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cause := services.WrapCommand(services.ErrEncode, services.StageEmbed, "ffmpeg", "burn subtitles",
		services.CommandResult{Command: "ffmpeg", ExitCode: 1, Stderr: "Conversion failed!"}, errors.New("exit status 1"))
	if err := store.Fail(ctx, "broken", cause); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	record, err := store.Get(ctx, "broken")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != history.StatusFailed {
		t.Fatalf("expected failed, got %q", record.Status)
	}
	if record.ErrorKind != services.KindEncode {
		t.Fatalf("expected encode kind, got %q", record.ErrorKind)
	}
	if record.Stage != services.StageEmbed {
		t.Fatalf("expected embed stage, got %q", record.Stage)
	}
	if record.ExitCode == nil || *record.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %v", record.ExitCode)
	}
	if record.ErrorMessage != cause.Error() {
		t.Fatalf("unexpected message %q", record.ErrorMessage)
	}
}

func TestFailKeepsStageWhenCauseHasNone(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if _, err := store.Begin(ctx, newJob("cancelled")); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.UpdateStage(ctx, "cancelled", services.StageTranscribe); err != nil {
		t.Fatalf("UpdateStage: %v", err)
	}
	if err := store.Fail(ctx, "cancelled", context.Canceled); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	record, err := store.Get(ctx, "cancelled")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Stage != services.StageTranscribe {
		t.Fatalf("expected stage to be preserved, got %q", record.Stage)
	}
	if record.ErrorKind != services.KindUnknown {
		t.Fatalf("expected unknown kind, got %q", record.ErrorKind)
	}
}

func TestUnknownIDReturnsNotFound(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateStage(ctx, "missing", services.StageExtract); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("UpdateStage: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestListOrderingLimitAndFilter(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.Begin(ctx, newJob(id)); err != nil {
			t.Fatalf("Begin %s: %v", id, err)
		}
	}
	if err := store.Complete(ctx, "b", history.Artifacts{OutputPath: "/o/b_output.mp4"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].CreatedAt.Before(all[i].CreatedAt) {
			t.Fatalf("records not newest first: %s before %s", all[i-1].ID, all[i].ID)
		}
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 records, got %d", len(limited))
	}

	succeeded, err := store.List(ctx, 10, history.StatusSucceeded)
	if err != nil {
		t.Fatalf("List filter: %v", err)
	}
	if len(succeeded) != 1 || succeeded[0].ID != "b" {
		t.Fatalf("expected only b, got %+v", succeeded)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if _, err := store.Begin(ctx, newJob("gone")); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "gone"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMarkInterrupted(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"running", "finished"} {
		if _, err := store.Begin(ctx, newJob(id)); err != nil {
			t.Fatalf("Begin %s: %v", id, err)
		}
	}
	if err := store.Complete(ctx, "finished", history.Artifacts{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	count, err := store.MarkInterrupted(ctx)
	if err != nil {
		t.Fatalf("MarkInterrupted: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 interrupted job, got %d", count)
	}
	record, err := store.Get(ctx, "running")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Status != history.StatusFailed {
		t.Fatalf("expected failed, got %q", record.Status)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	if _, err := store.Begin(ctx, newJob("persisted")); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(ctx, "persisted"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
