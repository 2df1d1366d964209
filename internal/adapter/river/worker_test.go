package river_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	goriver "github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	riveradapter "github.com/neomorfeo/barberiq/internal/adapter/river"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func changeJob(args riveradapter.ChangeJobArgs) *goriver.Job[riveradapter.ChangeJobArgs] {
	return &goriver.Job[riveradapter.ChangeJobArgs]{
		JobRow: &rivertype.JobRow{ID: 7, Attempt: 1, Kind: args.Kind()},
		Args:   args,
	}
}

func TestChangeWorker_HandsChangeToHandler(t *testing.T) {
	var got []riveradapter.ChangeJobArgs
	worker := riveradapter.NewChangeWorker(discardLogger(), func(_ context.Context, args riveradapter.ChangeJobArgs) error {
		got = append(got, args)
		return nil
	})

	args := riveradapter.ChangeJobArgs{Change: "record.created", TenantID: "bb-1", Slug: "barbearia-alpha"}
	if err := worker.Work(context.Background(), changeJob(args)); err != nil {
		t.Fatalf("Work: %v", err)
	}
	if len(got) != 1 || got[0] != args {
		t.Errorf("handler got %+v, want [%+v]", got, args)
	}
}

func TestChangeWorker_HandlerErrorFailsJob(t *testing.T) {
	boom := errors.New("boom")
	worker := riveradapter.NewChangeWorker(discardLogger(), func(context.Context, riveradapter.ChangeJobArgs) error {
		return boom
	})

	err := worker.Work(context.Background(), changeJob(riveradapter.ChangeJobArgs{Change: "record.deleted"}))
	if !errors.Is(err, boom) {
		t.Errorf("Work error = %v, want %v", err, boom)
	}
}

func TestChangeWorker_NoHandler(t *testing.T) {
	worker := riveradapter.NewChangeWorker(nil, nil)

	if err := worker.Work(context.Background(), changeJob(riveradapter.ChangeJobArgs{Change: "tenant.registered"})); err != nil {
		t.Errorf("Work: %v", err)
	}
}
