package play

import (
	"context"
	"log"
	"os"

	"google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/option"
)

const defaultPackageName = "com.aisporanaliz.app"

// Verifier checks purchases against the Google Play Developer API. Build
// it once at startup and inject it; nothing here reads credentials at
// call time.
type Verifier struct {
	service     *androidpublisher.Service
	packageName string
}

// NewVerifier initializes the Android Publisher client. Credentials come
// from the GOOGLE_SERVICE_ACCOUNT_KEY environment variable (a service
// account JSON blob); when it is absent the client falls back to ambient
// default credentials.
func NewVerifier(ctx context.Context) (*Verifier, error) {
	opts := []option.ClientOption{
		option.WithScopes(androidpublisher.AndroidpublisherScope),
	}

	if key := os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"); key != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(key)))
		log.Println("Play verifier: using credentials from GOOGLE_SERVICE_ACCOUNT_KEY")
	} else {
		log.Println("Play verifier: GOOGLE_SERVICE_ACCOUNT_KEY not set, using default credentials")
	}

	service, err := androidpublisher.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	packageName := os.Getenv("GOOGLE_PLAY_PACKAGE_NAME")
	if packageName == "" {
		packageName = defaultPackageName
	}

	return &Verifier{service: service, packageName: packageName}, nil
}

// VerifyPurchase reports whether a one-time product purchase is in the
// "purchased" state. Transport and API errors are logged and reported as
// not verified, never propagated.
func (v *Verifier) VerifyPurchase(ctx context.Context, purchaseToken, productID string) bool {
	resp, err := v.service.Purchases.Products.
		Get(v.packageName, productID, purchaseToken).
		Context(ctx).Do()
	if err != nil {
		log.Printf("Play verifier: product verification failed for %s: %v", productID, err)
		return false
	}

	// purchaseState: 0 = purchased, 1 = canceled, 2 = pending
	return resp.PurchaseState == 0
}

// VerifySubscription reports whether a subscription purchase has its
// payment received. Errors are logged and reported as not verified.
func (v *Verifier) VerifySubscription(ctx context.Context, purchaseToken, subscriptionID string) bool {
	resp, err := v.service.Purchases.Subscriptions.
		Get(v.packageName, subscriptionID, purchaseToken).
		Context(ctx).Do()
	if err != nil {
		log.Printf("Play verifier: subscription verification failed for %s: %v", subscriptionID, err)
		return false
	}

	// paymentState: 0 = pending, 1 = received. The field is a pointer;
	// absent means no payment yet.
	return resp.PaymentState != nil && *resp.PaymentState == 1
}
