package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olekh/ledgerd/internal/adapter/http/dto"
	"github.com/olekh/ledgerd/internal/domain"
	"github.com/olekh/ledgerd/internal/usecase"
)

type balanceServiceStub struct {
	listFn func(ctx context.Context, input usecase.ListBalancesInput) ([]*domain.BalanceSnapshot, error)
}

func (s *balanceServiceStub) ListBalances(ctx context.Context, input usecase.ListBalancesInput) ([]*domain.BalanceSnapshot, error) {
	return s.listFn(ctx, input)
}

func TestBalanceHandler_List_ByAccount(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context, input usecase.ListBalancesInput) ([]*domain.BalanceSnapshot, error) {
			if input.Account == nil || input.Account.Key() != "cust-a#checking" {
				t.Fatalf("unexpected input %+v", input)
			}
			return []*domain.BalanceSnapshot{{
				Account:  *input.Account,
				Currency: "USD",
				Balance:  decimal.NewFromInt(100),
				AsOf:     time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/balances?account=cust-a%23checking", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp dto.ListBalancesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Balances) != 1 || resp.Balances[0].Account != "cust-a#checking" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_List_ByCustomer(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context, input usecase.ListBalancesInput) ([]*domain.BalanceSnapshot, error) {
			if input.Account != nil || input.Customer != "cust-a" {
				t.Fatalf("unexpected input %+v", input)
			}
			return []*domain.BalanceSnapshot{
				{Account: domain.AccountID{Customer: "cust-a", Discriminator: "checking"}, Currency: "USD", Balance: decimal.NewFromInt(100)},
				{Account: domain.AccountID{Customer: "cust-a", Discriminator: "savings"}, Currency: "EUR", Balance: decimal.Zero, Genesis: true},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/balances?customer=cust-a", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListBalancesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(resp.Balances))
	}

	if !resp.Balances[1].Genesis {
		t.Fatal("expected genesis marker on the seeded snapshot")
	}
}

func TestBalanceHandler_List_MissingIdentity(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context, input usecase.ListBalancesInput) ([]*domain.BalanceSnapshot, error) {
			t.Fatal("ListBalances should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/balances", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBalanceHandler_List_InvalidAccount(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/v1/balances?account=no-separator", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBalanceHandler_List_StorageUnavailable(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context, input usecase.ListBalancesInput) ([]*domain.BalanceSnapshot, error) {
			return nil, domain.ErrStorageUnavailable
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/balances?account=cust-a%23checking", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
