package ledger

// Entry is an immutable audit record under credit_transactions/{pushId}.
type Entry struct {
	UserID       string      `json:"userId"`
	Type         string      `json:"type"` // "purchase" | "premium"
	Amount       int         `json:"amount"`
	BalanceAfter int         `json:"balanceAfter"`
	CreatedAt    interface{} `json:"createdAt"` // database.ServerTimestamp on write
	Description  string      `json:"description"`
	ProductID    string      `json:"productId"`
	PurchaseID   string      `json:"purchaseId"` // 50-char token prefix
	Verified     bool        `json:"verified"`
}

// PurchaseLog is the immutable record under purchase_logs/{pushId}. Its
// purchaseToken field doubles as the legacy duplicate-detection index.
type PurchaseLog struct {
	UserID        string      `json:"userId"`
	ProductID     string      `json:"productId"`
	PurchaseToken string      `json:"purchaseToken"` // 50-char prefix
	CreditAmount  int         `json:"creditAmount,omitempty"`
	PremiumDays   int         `json:"premiumDays,omitempty"`
	CreatedAt     interface{} `json:"createdAt"`
	Verified      bool        `json:"verified"`
	Platform      string      `json:"platform"`
}

// SuspiciousActivity is an append-only record under
// suspicious_activity/{pushId}. Write-only from this service.
type SuspiciousActivity struct {
	UserID       string                 `json:"userId"`
	ActivityType string                 `json:"activityType"`
	Details      map[string]interface{} `json:"details"`
	CreatedAt    interface{}            `json:"createdAt"`
	IPAddress    interface{}            `json:"ipAddress"`
}

// TokenClaim marks a purchase token as consumed. Stored under
// purchase_claims/{sha256(token)}; creating it is the atomic
// duplicate-rejection step.
type TokenClaim struct {
	UserID    string      `json:"userId"`
	ProductID string      `json:"productId"`
	CreatedAt interface{} `json:"createdAt"`
}

type VerifyPurchaseRequest struct {
	PurchaseToken string `json:"purchaseToken"`
	ProductID     string `json:"productId"`
	Platform      string `json:"platform,omitempty"`
}

type CreditResult struct {
	CreditsAdded int `json:"creditsAdded"`
	NewBalance   int `json:"newBalance"`
}

type PremiumResult struct {
	PremiumDays int   `json:"premiumDays"`
	ExpiresAt   int64 `json:"expiresAt"`
}

type CreditResponse struct {
	Success      bool   `json:"success"`
	CreditsAdded int    `json:"creditsAdded"`
	NewBalance   int    `json:"newBalance"`
	Message      string `json:"message"`
}

type PremiumResponse struct {
	Success     bool   `json:"success"`
	PremiumDays int    `json:"premiumDays"`
	ExpiresAt   int64  `json:"expiresAt"`
	Message     string `json:"message"`
}
