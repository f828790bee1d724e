package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/andres10976/webspider/backend/internal/model"
)

var alertCols = []string{"target_email", "message", "is_active", "updated_at"}

func TestUpsert_ReplacesOnTarget(t *testing.T) {
	mock := newMock(t)
	repo := NewAlertRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (target_email) DO UPDATE SET`)).
		WithArgs("u@x.com", "second", false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), "u@x.com", "second", false); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	expectationsMet(t, mock)
}

func TestUpsert_EmptyTargetIsBroadcast(t *testing.T) {
	mock := newMock(t)
	repo := NewAlertRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO alerts`)).
		WithArgs(model.BroadcastTarget, "hello", true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), "", "hello", true); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	expectationsMet(t, mock)
}

func TestUpsert_DBError(t *testing.T) {
	mock := newMock(t)
	repo := NewAlertRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO alerts`)).
		WithArgs(anyArgs(4)...).
		WillReturnError(errors.New("connection reset"))

	if err := repo.Upsert(context.Background(), "ALL", "hello", true); err == nil {
		t.Fatal("expected an error")
	}
}

func TestListActiveFor_FiltersActiveBroadcastAndUser(t *testing.T) {
	mock := newMock(t)
	repo := NewAlertRepository(mock)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		`WHERE is_active AND (target_email = $1 OR target_email = $2)`)).
		WithArgs(model.BroadcastTarget, "bob@x.com").
		WillReturnRows(pgxmock.NewRows(alertCols).
			AddRow("bob@x.com", "yours", true, now).
			AddRow(model.BroadcastTarget, "everyone", true, now.Add(-time.Minute)))

	got, err := repo.ListActiveFor(context.Background(), "bob@x.com")
	if err != nil {
		t.Fatalf("ListActiveFor: %v", err)
	}
	if len(got) != 2 || got[0].Message != "yours" || got[1].TargetEmail != model.BroadcastTarget {
		t.Errorf("got %+v", got)
	}
	expectationsMet(t, mock)
}

func TestListActiveFor_EmptyIsNotNil(t *testing.T) {
	mock := newMock(t)
	repo := NewAlertRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM alerts`)).
		WithArgs(model.BroadcastTarget, "bob@x.com").
		WillReturnRows(pgxmock.NewRows(alertCols))

	got, err := repo.ListActiveFor(context.Background(), "bob@x.com")
	if err != nil {
		t.Fatalf("ListActiveFor: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
	expectationsMet(t, mock)
}
