package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/bilwininc-ship-it/aianaliz/internal/apperror"
	"github.com/bilwininc-ship-it/aianaliz/internal/database"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/account"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/ledger"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/product"
)

const (
	tokenPrefixLen  = 50
	defaultPlatform = "google_play"
	dayMillis       = 24 * 60 * 60 * 1000
)

// LedgerService applies credit and premium mutations to user accounts and
// appends the audit trail. Each mutation is one atomic multi-location
// write covering the account field and both audit records, so a partial
// application cannot occur.
type LedgerService struct {
	db      database.Store
	catalog product.Catalog
}

func NewLedgerService(db database.Store, catalog product.Catalog) *LedgerService {
	return &LedgerService{db: db, catalog: catalog}
}

func tokenPrefix(token string, n int) string {
	if len(token) > n {
		return token[:n]
	}
	return token
}

// IsDuplicate checks the legacy purchase_logs index for the token's
// 50-character prefix. It is a cheap pre-check only; ClaimToken is the
// authority for duplicate rejection.
func (s *LedgerService) IsDuplicate(ctx context.Context, purchaseToken string) (bool, error) {
	var matches map[string]json.RawMessage
	err := s.db.QueryChildEqual(ctx, "purchase_logs", "purchaseToken",
		tokenPrefix(purchaseToken, tokenPrefixLen), 1, &matches)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return len(matches) > 0, nil
}

// ClaimToken atomically marks the purchase token as consumed. A token can
// be claimed exactly once system-wide; losing the claim is the sole
// source of the already-exists failure.
func (s *LedgerService) ClaimToken(ctx context.Context, userID, productID, purchaseToken string) error {
	digest := sha256.Sum256([]byte(purchaseToken))
	path := "purchase_claims/" + hex.EncodeToString(digest[:])

	created, err := s.db.Create(ctx, path, ledger.TokenClaim{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: database.ServerTimestamp,
	})
	if err != nil {
		return apperror.Wrap(apperror.Internal, "Satın alma kaydedilemedi", err)
	}
	if !created {
		return apperror.New(apperror.AlreadyExists, "Bu satın alma daha önce kullanılmış")
	}
	return nil
}

// ReleaseToken frees a claim after a mutation failed cleanly, so the
// token stays usable for a retry. Callers must not release after an
// unknown-outcome failure.
func (s *LedgerService) ReleaseToken(ctx context.Context, purchaseToken string) {
	digest := sha256.Sum256([]byte(purchaseToken))
	if err := s.db.Delete(ctx, "purchase_claims/"+hex.EncodeToString(digest[:])); err != nil {
		log.Printf("Failed to release purchase claim: %v", err)
	}
}

// CreditPurchase adds the product's credit amount to the account and
// appends the ledger entry and purchase log in the same write.
func (s *LedgerService) CreditPurchase(ctx context.Context, userID, productID, purchaseToken, platform string) (*ledger.CreditResult, error) {
	amount := s.catalog.CreditAmount(productID)
	if amount == 0 {
		return nil, apperror.New(apperror.InvalidArgument, "Geçersiz ürün ID")
	}

	acct, err := s.getAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	newBalance := acct.Credits + amount

	if platform == "" {
		platform = defaultPlatform
	}
	prefix := tokenPrefix(purchaseToken, tokenPrefixLen)

	entry := ledger.Entry{
		UserID:       userID,
		Type:         "purchase",
		Amount:       amount,
		BalanceAfter: newBalance,
		CreatedAt:    database.ServerTimestamp,
		Description:  fmt.Sprintf("Kredi satın alma - %s", productID),
		ProductID:    productID,
		PurchaseID:   prefix,
		Verified:     true,
	}
	purchaseLog := ledger.PurchaseLog{
		UserID:        userID,
		ProductID:     productID,
		PurchaseToken: prefix,
		CreditAmount:  amount,
		CreatedAt:     database.ServerTimestamp,
		Verified:      true,
		Platform:      platform,
	}

	updates := map[string]interface{}{
		"users/" + userID + "/credits":                 newBalance,
		"credit_transactions/" + database.NewPushKey(): entry,
		"purchase_logs/" + database.NewPushKey():       purchaseLog,
	}
	if err := s.db.Update(ctx, "", updates); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Kredi eklenemedi", err)
	}

	log.Printf("Credits added: %s +%d (balance %d)", userID, amount, newBalance)
	return &ledger.CreditResult{CreditsAdded: amount, NewBalance: newBalance}, nil
}

// ActivatePremium sets the premium flag and expiry on the account and
// appends the matching audit records in the same write.
//
// Expiry is always reset to now + days, never extended from a prior
// unexpired expiry; this preserves the live behavior.
func (s *LedgerService) ActivatePremium(ctx context.Context, userID, productID, purchaseToken, platform string) (*ledger.PremiumResult, error) {
	days := s.catalog.PremiumDays(productID)
	if days == 0 {
		return nil, apperror.New(apperror.InvalidArgument, "Geçersiz premium ürün ID")
	}

	if _, err := s.getAccount(ctx, userID); err != nil {
		return nil, err
	}
	expiresAt := time.Now().UnixMilli() + int64(days)*dayMillis

	if platform == "" {
		platform = defaultPlatform
	}
	prefix := tokenPrefix(purchaseToken, tokenPrefixLen)

	entry := ledger.Entry{
		UserID:       userID,
		Type:         "premium",
		Amount:       0,
		BalanceAfter: 0,
		CreatedAt:    database.ServerTimestamp,
		Description:  fmt.Sprintf("Premium abonelik - %d gün", days),
		ProductID:    productID,
		PurchaseID:   prefix,
		Verified:     true,
	}
	purchaseLog := ledger.PurchaseLog{
		UserID:        userID,
		ProductID:     productID,
		PurchaseToken: prefix,
		PremiumDays:   days,
		CreatedAt:     database.ServerTimestamp,
		Verified:      true,
		Platform:      platform,
	}

	updates := map[string]interface{}{
		"users/" + userID + "/isPremium":               true,
		"users/" + userID + "/premiumExpiresAt":        expiresAt,
		"credit_transactions/" + database.NewPushKey(): entry,
		"purchase_logs/" + database.NewPushKey():       purchaseLog,
	}
	if err := s.db.Update(ctx, "", updates); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Premium aktivasyon başarısız", err)
	}

	log.Printf("Premium activated: %s for %d days", userID, days)
	return &ledger.PremiumResult{PremiumDays: days, ExpiresAt: expiresAt}, nil
}

// LogSuspiciousActivity appends a write-only audit record. Its own
// failure is logged and swallowed so it never masks the original error.
func (s *LedgerService) LogSuspiciousActivity(ctx context.Context, userID, activityType string, details map[string]interface{}) {
	_, err := s.db.Push(ctx, "suspicious_activity", ledger.SuspiciousActivity{
		UserID:       userID,
		ActivityType: activityType,
		Details:      details,
		CreatedAt:    database.ServerTimestamp,
		IPAddress:    nil,
	})
	if err != nil {
		log.Printf("Failed to log suspicious activity for %s: %v", userID, err)
		return
	}
	log.Printf("Suspicious activity: %s - %s", userID, activityType)
}

func (s *LedgerService) getAccount(ctx context.Context, userID string) (*account.Account, error) {
	var acct *account.Account
	if err := s.db.Get(ctx, "users/"+userID, &acct); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "Kullanıcı okunamadı", err)
	}
	if acct == nil {
		return nil, apperror.New(apperror.NotFound, "Kullanıcı bulunamadı")
	}
	return acct, nil
}
