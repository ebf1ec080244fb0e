package health

import (
	"context"
	"errors"
	"testing"
)

type pinger struct{ err error }

func (p pinger) Ping(_ context.Context) error { return p.err }

type checker struct{ err error }

func (c checker) HealthCheck(_ context.Context) error { return c.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(pinger{}, checker{}, checker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %s, want ok", report.Status)
	}
	for name, res := range report.Checks {
		if res != CheckOK {
			t.Errorf("check %s = %s", name, res)
		}
	}
	if len(report.Checks) != 3 {
		t.Errorf("expected 3 checks, got %d", len(report.Checks))
	}
}

func TestCheck_ProviderDownDegrades(t *testing.T) {
	svc := New(pinger{}, checker{err: errors.New("offline")}, checker{})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %s, want degraded", report.Status)
	}
	if report.Checks["embedding"] != CheckError {
		t.Errorf("embedding = %s", report.Checks["embedding"])
	}
	if report.Checks["database"] != CheckOK {
		t.Errorf("database = %s", report.Checks["database"])
	}
}

func TestCheck_NilProvidersSkipped(t *testing.T) {
	svc := New(pinger{}, nil, nil)

	report := svc.Check(context.Background())
	if len(report.Checks) != 1 {
		t.Errorf("expected only the database check, got %v", report.Checks)
	}
	if report.Status != Healthy {
		t.Errorf("status = %s", report.Status)
	}
}
