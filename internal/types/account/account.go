package account

// Account is the slice of users/{uid} this service reads and writes. The
// node carries more app-side fields; updates here only ever touch these.
type Account struct {
	Credits          int   `json:"credits"`
	IsPremium        bool  `json:"isPremium"`
	PremiumExpiresAt int64 `json:"premiumExpiresAt,omitempty"`
}
