package services

import (
	"context"
	"log"

	"github.com/bilwininc-ship-it/aianaliz/internal/apperror"
	"github.com/bilwininc-ship-it/aianaliz/internal/types/ledger"
)

// PurchaseVerifier validates purchase tokens against the platform store.
// Implemented by internal/play; tests inject a stub.
type PurchaseVerifier interface {
	VerifyPurchase(ctx context.Context, purchaseToken, productID string) bool
	VerifySubscription(ctx context.Context, purchaseToken, subscriptionID string) bool
}

// PurchaseService orchestrates the verify -> claim -> credit sequence for
// both purchase flows.
type PurchaseService struct {
	verifier PurchaseVerifier
	ledger   *LedgerService
}

func NewPurchaseService(verifier PurchaseVerifier, ledger *LedgerService) *PurchaseService {
	return &PurchaseService{verifier: verifier, ledger: ledger}
}

// VerifyAndAddCredits validates a one-time product purchase and credits
// the account.
func (s *PurchaseService) VerifyAndAddCredits(ctx context.Context, userID string, req *ledger.VerifyPurchaseRequest) (*ledger.CreditResult, error) {
	if req.PurchaseToken == "" || req.ProductID == "" {
		return nil, apperror.New(apperror.InvalidArgument, "purchaseToken ve productId gerekli")
	}

	log.Printf("Verifying purchase: %s - %s", userID, req.ProductID)

	if !s.verifier.VerifyPurchase(ctx, req.PurchaseToken, req.ProductID) {
		s.ledger.LogSuspiciousActivity(ctx, userID, "invalid_purchase", map[string]interface{}{
			"productId":     req.ProductID,
			"purchaseToken": tokenPrefix(req.PurchaseToken, 20),
		})
		return nil, apperror.New(apperror.InvalidArgument, "Satın alma doğrulanamadı")
	}

	if dup, err := s.ledger.IsDuplicate(ctx, req.PurchaseToken); err != nil {
		return nil, s.internalFault(ctx, userID, "purchase_error", req.ProductID, err)
	} else if dup {
		log.Printf("Duplicate purchase: %s", userID)
		return nil, apperror.New(apperror.AlreadyExists, "Bu satın alma daha önce kullanılmış")
	}

	// Reject unknown products before the token claim so an invalid
	// request leaves no writes behind.
	if s.ledger.catalog.CreditAmount(req.ProductID) == 0 {
		return nil, apperror.New(apperror.InvalidArgument, "Geçersiz ürün ID")
	}

	if err := s.ledger.ClaimToken(ctx, userID, req.ProductID, req.PurchaseToken); err != nil {
		return nil, err
	}

	result, err := s.ledger.CreditPurchase(ctx, userID, req.ProductID, req.PurchaseToken, req.Platform)
	if err != nil {
		if apperror.KindOf(err) == apperror.Internal {
			// Outcome unknown; the claim stays so the token cannot
			// double-credit.
			return nil, s.internalFault(ctx, userID, "purchase_error", req.ProductID, err)
		}
		s.ledger.ReleaseToken(ctx, req.PurchaseToken)
		return nil, err
	}
	return result, nil
}

// VerifyAndSetPremium validates a subscription purchase and activates
// premium on the account.
func (s *PurchaseService) VerifyAndSetPremium(ctx context.Context, userID string, req *ledger.VerifyPurchaseRequest) (*ledger.PremiumResult, error) {
	if req.PurchaseToken == "" || req.ProductID == "" {
		return nil, apperror.New(apperror.InvalidArgument, "purchaseToken ve productId gerekli")
	}

	log.Printf("Verifying premium purchase: %s - %s", userID, req.ProductID)

	if !s.verifier.VerifySubscription(ctx, req.PurchaseToken, req.ProductID) {
		s.ledger.LogSuspiciousActivity(ctx, userID, "invalid_premium_purchase", map[string]interface{}{
			"productId":     req.ProductID,
			"purchaseToken": tokenPrefix(req.PurchaseToken, 20),
		})
		return nil, apperror.New(apperror.InvalidArgument, "Satın alma doğrulanamadı")
	}

	if dup, err := s.ledger.IsDuplicate(ctx, req.PurchaseToken); err != nil {
		return nil, s.internalFault(ctx, userID, "premium_purchase_error", req.ProductID, err)
	} else if dup {
		return nil, apperror.New(apperror.AlreadyExists, "Bu satın alma daha önce kullanılmış")
	}

	if s.ledger.catalog.PremiumDays(req.ProductID) == 0 {
		return nil, apperror.New(apperror.InvalidArgument, "Geçersiz premium ürün ID")
	}

	if err := s.ledger.ClaimToken(ctx, userID, req.ProductID, req.PurchaseToken); err != nil {
		return nil, err
	}

	result, err := s.ledger.ActivatePremium(ctx, userID, req.ProductID, req.PurchaseToken, req.Platform)
	if err != nil {
		if apperror.KindOf(err) == apperror.Internal {
			return nil, s.internalFault(ctx, userID, "premium_purchase_error", req.ProductID, err)
		}
		s.ledger.ReleaseToken(ctx, req.PurchaseToken)
		return nil, err
	}
	return result, nil
}

// internalFault records an unexpected fault as suspicious activity and
// surfaces it as an internal error. Typed failures never pass through
// here.
func (s *PurchaseService) internalFault(ctx context.Context, userID, activityType, productID string, err error) error {
	log.Printf("Purchase flow error for %s: %v", userID, err)
	s.ledger.LogSuspiciousActivity(ctx, userID, activityType, map[string]interface{}{
		"productId": productID,
		"error":     err.Error(),
	})
	if apperror.KindOf(err) != apperror.Internal {
		return err
	}
	return apperror.Wrap(apperror.Internal, "Satın alma işlemi başarısız: "+apperror.MessageOf(err), err)
}
