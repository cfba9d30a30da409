package jobs

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/parking-reservation/internal/service"
)

type stubSweep struct {
	calls int
	res   service.SweepResult
	err   error
}

func (s *stubSweep) Sweep(context.Context) (service.SweepResult, error) {
	s.calls++
	return s.res, s.err
}

func TestNewSweeperRejectsBadSpec(t *testing.T) {
	if _, err := NewSweeper("every now and then", &stubSweep{}, nil); err == nil {
		t.Fatal("expected parse error")
	}
	for _, spec := range []string{"@every 1m", "*/5 * * * *", "*/30 * * * * *"} {
		if _, err := NewSweeper(spec, &stubSweep{}, nil); err != nil {
			t.Errorf("spec %q: %v", spec, err)
		}
	}
}

func TestRunOnceLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	stub := &stubSweep{res: service.SweepResult{Activated: 2, Completed: 1}}
	s, err := NewSweeper("@every 1h", stub, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}
	s.runOnce()
	if stub.calls != 1 || logs.FilterMessage("reservation sweep").Len() != 1 {
		t.Fatalf("calls=%d logs=%v", stub.calls, logs.All())
	}

	stub.err = errors.New("db down")
	s.runOnce()
	if logs.FilterMessage("reservation sweep failed").Len() != 1 {
		t.Fatal("failure not logged")
	}
}

func TestStopReturns(t *testing.T) {
	s, err := NewSweeper("@every 1h", &stubSweep{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop(context.Background())
}

func TestOnChangeRunsOnlyWhenSomethingMoved(t *testing.T) {
	stub := &stubSweep{}
	s, err := NewSweeper("@every 1h", stub, nil)
	if err != nil {
		t.Fatal(err)
	}
	var got []service.SweepResult
	s.OnChange(func(_ context.Context, res service.SweepResult) { got = append(got, res) })

	s.runOnce()
	if len(got) != 0 {
		t.Fatalf("idle sweep fired hook: %+v", got)
	}

	stub.res = service.SweepResult{Completed: 1}
	s.runOnce()
	if len(got) != 1 || got[0].Completed != 1 {
		t.Fatalf("hook calls = %+v", got)
	}

	stub.err = errors.New("db down")
	s.runOnce()
	if len(got) != 1 {
		t.Fatal("failed sweep fired hook")
	}
}
