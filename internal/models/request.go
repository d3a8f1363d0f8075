package models

// CreateOrderRequest carries the non-file fields of the order intake form.
// Files arrive as multipart parts alongside it.
type CreateOrderRequest struct {
	Instructions string `form:"instructions"`
	ForcePayment bool   `form:"force_payment"`
}

type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

type RedeemPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

type ResetDeferredBillingRequest struct {
	UserID string `json:"user_id" binding:"required"`
	// Month in YYYY-MM form; defaults to the current month when empty.
	Month string `json:"month"`
}

type UpdateClientRequest struct {
	IsVIP           *bool   `json:"is_vip"`
	DeferredBilling *bool   `json:"deferred_billing"`
	FullName        *string `json:"full_name"`
	BillingName     *string `json:"billing_name"`
	BillingAddress  *string `json:"billing_address"`
	BillingCity     *string `json:"billing_city"`
	BillingPostal   *string `json:"billing_postal"`
	BillingCountry  *string `json:"billing_country"`
	VATNumber       *string `json:"vat_number"`
	AdminNotes      *string `json:"admin_notes"`
}

type CreatePromoCodeRequest struct {
	Code                string `json:"code" binding:"required"`
	PhotosPerRedemption int    `json:"photos_per_redemption" binding:"required"`
	PoolTotal           int    `json:"pool_total" binding:"required"`
	ExpiresAt           string `json:"expires_at"`
}

type UpdatePromoCodeRequest struct {
	Active        *bool `json:"active"`
	PoolRemaining *int  `json:"pool_remaining"`
}

type BlogPostRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Excerpt   string `json:"excerpt"`
	Body      string `json:"body" binding:"required"`
	CoverURL  string `json:"cover_url"`
	Published bool   `json:"published"`
}

type CompanyInfoRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	VATNumber string `json:"vat_number"`
}

type PricingRequest struct {
	PricePerPhotoCents int64  `json:"price_per_photo_cents" binding:"required"`
	Currency           string `json:"currency" binding:"required"`
}

type ReorderRequest struct {
	// IDs in the desired display order.
	IDs []string `json:"ids" binding:"required"`
}
