package unit

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	accountservice "carmarket/contexts/identity-access/account-service"
	accounthttp "carmarket/contexts/identity-access/account-service/transport/http"
	listingservice "carmarket/contexts/marketplace/listing-service"
	listingerrors "carmarket/contexts/marketplace/listing-service/domain/errors"
	listingports "carmarket/contexts/marketplace/listing-service/ports"
	listinghttp "carmarket/contexts/marketplace/listing-service/transport/http"
	tradeservice "carmarket/contexts/marketplace/trade-service"
	trademem "carmarket/contexts/marketplace/trade-service/adapters/memory"
	tradeerrors "carmarket/contexts/marketplace/trade-service/domain/errors"
	tradeports "carmarket/contexts/marketplace/trade-service/ports"
	tradehttp "carmarket/contexts/marketplace/trade-service/transport/http"
)

type marketplaceFixture struct {
	accounts accountservice.Module
	listings listingservice.Module
	trades   tradeservice.Module
}

// newMarketplaceFixture wires the three contexts the way the API binary
// does: the trade repository guards listing deletion, and the listing and
// account services serve as the trade context's directories.
func newMarketplaceFixture() marketplaceFixture {
	accounts := accountservice.NewInMemoryModule(nil)
	tradeStore := trademem.NewStore()
	listings := listingservice.NewInMemoryModule(tradeStore, nil)
	trades := tradeservice.NewModule(tradeservice.Dependencies{
		Repository: tradeStore,
		Listings:   listings.Service,
		Users:      accounts.Service,
		Clock:      tradeStore,
		IDs:        tradeStore,
	})
	trades.Store = tradeStore
	return marketplaceFixture{accounts: accounts, listings: listings, trades: trades}
}

func (f marketplaceFixture) register(t *testing.T, mobile string) string {
	t.Helper()
	resp, err := f.accounts.Handler.RegisterHandler(context.Background(), accounthttp.RegisterRequest{
		MobileNumber: mobile,
		Password:     "secret123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", mobile, err)
	}
	return resp.UserID
}

func (f marketplaceFixture) publish(t *testing.T, sellerID string) listinghttp.AdvertisementResponse {
	t.Helper()
	ad, err := f.listings.Handler.CreateAdvertisementHandler(context.Background(), listingports.Actor{UserID: sellerID}, listinghttp.CreateAdvertisementRequest{
		Title:       "Clean 2019 Civic",
		Description: "single owner, full service history",
		Price:       decimal.NewFromInt(12000),
		Car: listinghttp.CarPayload{
			Make:  "Honda",
			Model: "Civic",
			Year:  2019,
			Color: "blue",
		},
	})
	if err != nil {
		t.Fatalf("create advertisement: %v", err)
	}
	return ad
}

func TestMarketplacePurchaseFlowAcrossContexts(t *testing.T) {
	fixture := newMarketplaceFixture()
	ctx := context.Background()

	sellerID := fixture.register(t, "09120000001")
	buyerID := fixture.register(t, "09120000002")
	ad := fixture.publish(t, sellerID)

	created, err := fixture.trades.Handler.CreateTransactionHandler(ctx, tradeports.Actor{UserID: buyerID}, tradehttp.CreateTransactionRequest{
		CarID:       ad.CarID,
		AgreedPrice: decimal.NewFromInt(9500),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if created.SellerID != sellerID {
		t.Fatalf("expected seller resolved from the advertisement, got %s", created.SellerID)
	}
	if created.AgreedPrice != "9500.00" {
		t.Fatalf("unexpected agreed price %s", created.AgreedPrice)
	}
	if created.SellerMobile != "09120000001" || created.BuyerMobile != "09120000002" {
		t.Fatalf("expected mobiles enriched from the account directory, got %s / %s", created.SellerMobile, created.BuyerMobile)
	}

	seller := tradeports.Actor{UserID: sellerID}
	if _, err := fixture.trades.Handler.UpdateStatusHandler(ctx, seller, created.ID, tradehttp.UpdateTransactionStatusRequest{Status: "accepted"}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	completed, err := fixture.trades.Handler.UpdateStatusHandler(ctx, seller, created.ID, tradehttp.UpdateTransactionStatusRequest{Status: "completed"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != "completed" {
		t.Fatalf("unexpected status %s", completed.Status)
	}

	err = fixture.listings.Handler.DeleteAdvertisementHandler(ctx, listingports.Actor{UserID: sellerID}, ad.ID)
	if !errors.Is(err, listingerrors.ErrCarHasTransaction) {
		t.Fatalf("expected traded car to block deletion, got %v", err)
	}
}

func TestMarketplaceCarTradesAtMostOnce(t *testing.T) {
	fixture := newMarketplaceFixture()
	ctx := context.Background()

	sellerID := fixture.register(t, "09120000003")
	buyerID := fixture.register(t, "09120000004")
	rivalID := fixture.register(t, "09120000005")
	ad := fixture.publish(t, sellerID)

	created, err := fixture.trades.Handler.CreateTransactionHandler(ctx, tradeports.Actor{UserID: buyerID}, tradehttp.CreateTransactionRequest{
		CarID:       ad.CarID,
		AgreedPrice: decimal.NewFromInt(9000),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	_, err = fixture.trades.Handler.CreateTransactionHandler(ctx, tradeports.Actor{UserID: rivalID}, tradehttp.CreateTransactionRequest{
		CarID:       ad.CarID,
		AgreedPrice: decimal.NewFromInt(9100),
	})
	if !errors.Is(err, tradeerrors.ErrPendingTransactionExists) {
		t.Fatalf("expected pending conflict, got %v", err)
	}

	seller := tradeports.Actor{UserID: sellerID}
	if _, err := fixture.trades.Handler.UpdateStatusHandler(ctx, seller, created.ID, tradehttp.UpdateTransactionStatusRequest{Status: "rejected"}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, err = fixture.trades.Handler.CreateTransactionHandler(ctx, tradeports.Actor{UserID: rivalID}, tradehttp.CreateTransactionRequest{
		CarID:       ad.CarID,
		AgreedPrice: decimal.NewFromInt(9100),
	})
	if !errors.Is(err, tradeerrors.ErrCarAlreadyTraded) {
		t.Fatalf("expected car to trade at most once, got %v", err)
	}
}

func TestMarketplaceSellerCannotBuyOwnCar(t *testing.T) {
	fixture := newMarketplaceFixture()
	ctx := context.Background()

	sellerID := fixture.register(t, "09120000006")
	ad := fixture.publish(t, sellerID)

	_, err := fixture.trades.Handler.CreateTransactionHandler(ctx, tradeports.Actor{UserID: sellerID}, tradehttp.CreateTransactionRequest{
		CarID:       ad.CarID,
		AgreedPrice: decimal.NewFromInt(9000),
	})
	if !errors.Is(err, tradeerrors.ErrSelfTrade) {
		t.Fatalf("expected self-trade rejection, got %v", err)
	}
}
