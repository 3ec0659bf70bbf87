package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilwininc-ship-it/aianaliz/internal/apperror"
	"github.com/bilwininc-ship-it/aianaliz/internal/database"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/account"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/ledger"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/product"
)

func newTestLedger() (*LedgerService, *database.MemoryStore) {
	db := database.NewMemoryStore()
	return NewLedgerService(db, product.DefaultCatalog()), db
}

func seedAccount(t *testing.T, db *database.MemoryStore, credits int) string {
	t.Helper()
	userID := "user_" + uuid.NewString()
	err := db.Set(context.Background(), "users/"+userID, account.Account{Credits: credits})
	require.NoError(t, err)
	return userID
}

func getAccount(t *testing.T, db *database.MemoryStore, userID string) account.Account {
	t.Helper()
	var acct account.Account
	require.NoError(t, db.Get(context.Background(), "users/"+userID, &acct))
	return acct
}

func TestCreditPurchase(t *testing.T) {
	svc, db := newTestLedger()
	ctx := context.Background()
	userID := seedAccount(t, db, 5)

	result, err := svc.CreditPurchase(ctx, userID, "credits_25", "token-abc", "")
	require.NoError(t, err)

	assert.Equal(t, 25, result.CreditsAdded)
	assert.Equal(t, 30, result.NewBalance)
	assert.Equal(t, 30, getAccount(t, db, userID).Credits)

	var entries map[string]ledger.Entry
	require.NoError(t, db.Get(ctx, "credit_transactions", &entries))
	require.Len(t, entries, 1)
	for _, e := range entries {
		assert.Equal(t, userID, e.UserID)
		assert.Equal(t, "purchase", e.Type)
		assert.Equal(t, 25, e.Amount)
		assert.Equal(t, 30, e.BalanceAfter)
		assert.Equal(t, "credits_25", e.ProductID)
		assert.Equal(t, "token-abc", e.PurchaseID)
		assert.True(t, e.Verified)
	}

	var logs map[string]ledger.PurchaseLog
	require.NoError(t, db.Get(ctx, "purchase_logs", &logs))
	require.Len(t, logs, 1)
	for _, l := range logs {
		assert.Equal(t, "token-abc", l.PurchaseToken)
		assert.Equal(t, 25, l.CreditAmount)
		assert.Equal(t, "google_play", l.Platform)
		assert.True(t, l.Verified)
	}
}

func TestCreditPurchaseTruncatesLongToken(t *testing.T) {
	svc, db := newTestLedger()
	ctx := context.Background()
	userID := seedAccount(t, db, 0)

	longToken := strings.Repeat("x", 200)
	_, err := svc.CreditPurchase(ctx, userID, "credits_5", longToken, "")
	require.NoError(t, err)

	var logs map[string]ledger.PurchaseLog
	require.NoError(t, db.Get(ctx, "purchase_logs", &logs))
	for _, l := range logs {
		assert.Len(t, l.PurchaseToken, 50)
	}
}

func TestCreditPurchaseUnknownProduct(t *testing.T) {
	svc, db := newTestLedger()
	ctx := context.Background()
	userID := seedAccount(t, db, 5)

	_, err := svc.CreditPurchase(ctx, userID, "credits_999", "token", "")
	require.Error(t, err)
	assert.Equal(t, apperror.InvalidArgument, apperror.KindOf(err))
	assert.Equal(t, 5, getAccount(t, db, userID).Credits)
}

func TestCreditPurchaseAccountMissing(t *testing.T) {
	svc, _ := newTestLedger()

	_, err := svc.CreditPurchase(context.Background(), "no-such-user", "credits_10", "token", "")
	require.Error(t, err)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestActivatePremium(t *testing.T) {
	svc, db := newTestLedger()
	ctx := context.Background()
	userID := seedAccount(t, db, 3)

	before := time.Now().UnixMilli()
	result, err := svc.ActivatePremium(ctx, userID, "premium_yearly", "sub-token", "")
	require.NoError(t, err)
	after := time.Now().UnixMilli()

	assert.Equal(t, 365, result.PremiumDays)
	assert.GreaterOrEqual(t, result.ExpiresAt, before+365*dayMillis)
	assert.LessOrEqual(t, result.ExpiresAt, after+365*dayMillis)

	acct := getAccount(t, db, userID)
	assert.True(t, acct.IsPremium)
	assert.Equal(t, result.ExpiresAt, acct.PremiumExpiresAt)
	assert.Equal(t, 3, acct.Credits, "premium activation must not touch credits")
}

func TestActivatePremiumResetsExpiry(t *testing.T) {
	svc, db := newTestLedger()
	ctx := context.Background()
	userID := seedAccount(t, db, 0)

	// A long-running subscription is already active.
	farFuture := time.Now().UnixMilli() + 400*dayMillis
	require.NoError(t, db.Update(ctx, "users/"+userID, map[string]interface{}{
		"isPremium":        true,
		"premiumExpiresAt": farFuture,
	}))

	result, err := svc.ActivatePremium(ctx, userID, "premium_monthly", "sub-token-2", "")
	require.NoError(t, err)

	assert.Less(t, result.ExpiresAt, farFuture, "expiry resets from now, it never extends")
	assert.True(t, getAccount(t, db, userID).IsPremium)
}

func TestClaimTokenOnce(t *testing.T) {
	svc, _ := newTestLedger()
	ctx := context.Background()

	require.NoError(t, svc.ClaimToken(ctx, "u1", "credits_10", "tok-1"))

	err := svc.ClaimToken(ctx, "u2", "credits_10", "tok-1")
	require.Error(t, err)
	assert.Equal(t, apperror.AlreadyExists, apperror.KindOf(err))

	// A different token claims fine.
	require.NoError(t, svc.ClaimToken(ctx, "u2", "credits_10", "tok-2"))
}

func TestReleaseTokenAllowsReclaim(t *testing.T) {
	svc, _ := newTestLedger()
	ctx := context.Background()

	require.NoError(t, svc.ClaimToken(ctx, "u1", "credits_10", "tok-1"))
	svc.ReleaseToken(ctx, "tok-1")
	require.NoError(t, svc.ClaimToken(ctx, "u1", "credits_10", "tok-1"))
}

func TestIsDuplicate(t *testing.T) {
	svc, db := newTestLedger()
	ctx := context.Background()
	userID := seedAccount(t, db, 0)

	longToken := strings.Repeat("a", 80)
	dup, err := svc.IsDuplicate(ctx, longToken)
	require.NoError(t, err)
	assert.False(t, dup)

	_, err = svc.CreditPurchase(ctx, userID, "credits_5", longToken, "")
	require.NoError(t, err)

	dup, err = svc.IsDuplicate(ctx, longToken)
	require.NoError(t, err)
	assert.True(t, dup)

	// Tokens sharing the 50-char prefix count as the same purchase.
	dup, err = svc.IsDuplicate(ctx, strings.Repeat("a", 50)+"zzz")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestLogSuspiciousActivity(t *testing.T) {
	svc, db := newTestLedger()
	ctx := context.Background()

	svc.LogSuspiciousActivity(ctx, "u1", "invalid_purchase", map[string]interface{}{
		"productId": "credits_10",
	})

	var records map[string]ledger.SuspiciousActivity
	require.NoError(t, db.Get(ctx, "suspicious_activity", &records))
	require.Len(t, records, 1)
	for _, rec := range records {
		assert.Equal(t, "u1", rec.UserID)
		assert.Equal(t, "invalid_purchase", rec.ActivityType)
		assert.Equal(t, "credits_10", rec.Details["productId"])
	}
}
