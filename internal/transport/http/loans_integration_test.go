package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AlexP3rez/biblioteca-api/internal/app"
	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/domain"
	"github.com/AlexP3rez/biblioteca-api/internal/storage/postgres"
	"github.com/AlexP3rez/biblioteca-api/internal/testutil"
)

func TestLoanLifecycle_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	bookRepo := postgres.NewBookRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	queryRepo := postgres.NewLoanQueryRepository(pool)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	ledger := app.NewInventoryLedger(bookRepo)
	gate := app.NewEligibilityGate(postgres.NewUserRepository(pool), loanRepo, clk)
	loanSvc := app.NewLoanService(loanRepo, ledger, gate, clk)
	querySvc := app.NewLoanQueryService(queryRepo, clk)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	userID := testutil.InsertUser(t, ctx, pool, "Ada", "ada@example.edu", domain.UserStatusActive)
	rivalID := testutil.InsertUser(t, ctx, pool, "Grace", "grace@example.edu", domain.UserStatusActive)
	bookID := testutil.InsertBook(t, ctx, pool, "Dune", 1, 1)

	mux := http.NewServeMux()
	mux.Handle("/loans", HandleLoans(loanSvc, querySvc))
	mux.Handle("/loans/", HandleLoanActions(loanSvc, querySvc))

	borrow := func(userID string) *httptest.ResponseRecorder {
		body := []byte(`{"user_id":"` + userID + `","book_id":"` + bookID + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewBuffer(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := borrow(userID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created loanResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.State != string(domain.LoanStateActive) {
		t.Fatalf("expected active loan, got %s", created.State)
	}
	if !created.DueAt.Equal(clock.Day(now).AddDate(0, 0, 14)) {
		t.Fatalf("expected default due date, got %v", created.DueAt)
	}

	var available int
	if err := pool.QueryRow(ctx, `SELECT available_copies FROM books WHERE id = $1`, bookID).Scan(&available); err != nil {
		t.Fatalf("query availability: %v", err)
	}
	if available != 0 {
		t.Fatalf("expected 0 available copies after borrow, got %d", available)
	}

	// The last copy is out; a second borrower is turned away.
	if rec := borrow(rivalID); rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for exhausted title, got %d: %s", rec.Code, rec.Body.String())
	}

	renewReq := httptest.NewRequest(http.MethodPost, "/loans/"+created.ID+"/renew", nil)
	renewRec := httptest.NewRecorder()
	mux.ServeHTTP(renewRec, renewReq)
	if renewRec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on renew, got %d: %s", renewRec.Code, renewRec.Body.String())
	}

	var renewed loanResponse
	if err := json.NewDecoder(renewRec.Body).Decode(&renewed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if renewed.State != string(domain.LoanStateRenewed) || renewed.RenewalCount != 1 {
		t.Fatalf("unexpected loan after renew: %+v", renewed)
	}
	if !renewed.DueAt.Equal(created.DueAt.AddDate(0, 0, 15)) {
		t.Fatalf("expected due date pushed 15 days, got %v", renewed.DueAt)
	}

	returnReq := httptest.NewRequest(http.MethodPost, "/loans/"+created.ID+"/return", nil)
	returnRec := httptest.NewRecorder()
	mux.ServeHTTP(returnRec, returnReq)
	if returnRec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on return, got %d: %s", returnRec.Code, returnRec.Body.String())
	}

	if err := pool.QueryRow(ctx, `SELECT available_copies FROM books WHERE id = $1`, bookID).Scan(&available); err != nil {
		t.Fatalf("query availability: %v", err)
	}
	if available != 1 {
		t.Fatalf("expected copy back on the shelf, got %d available", available)
	}

	// Returning again must not release another copy.
	returnRec2 := httptest.NewRecorder()
	mux.ServeHTTP(returnRec2, httptest.NewRequest(http.MethodPost, "/loans/"+created.ID+"/return", nil))
	if returnRec2.Code != http.StatusConflict {
		t.Fatalf("expected status 409 on double return, got %d", returnRec2.Code)
	}

	// The freed copy can now go to the second borrower.
	if rec := borrow(rivalID); rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 after return, got %d: %s", rec.Code, rec.Body.String())
	}
}
