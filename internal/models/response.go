package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// CreateOrderResponse tells the client what happened at the payment gate:
// either the order went straight to completed (VIP deferred or fully covered
// by credits) or a checkout redirect is required.
type CreateOrderResponse struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	FreePhotosUsed  int    `json:"free_photos_used"`
	PaymentRequired bool   `json:"payment_required"`
	CheckoutURL     string `json:"checkout_url,omitempty"`
}

type OrderResponse struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	PhotoCount     int        `json:"photo_count"`
	FreePhotosUsed int        `json:"free_photos_used"`
	AmountCents    int64      `json:"amount_cents"`
	Currency       string     `json:"currency"`
	Instructions   string     `json:"instructions,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type FileResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderFilesResponse struct {
	Originals []FileResponse `json:"originals"`
	Delivered []FileResponse `json:"delivered"`
}

type InvoiceItemResponse struct {
	Description    string `json:"description"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
	OrderID        string `json:"order_id,omitempty"`
}

type InvoiceResponse struct {
	ID         string                `json:"id"`
	UserID     string                `json:"user_id"`
	TotalCents int64                 `json:"total_cents"`
	Currency   string                `json:"currency"`
	Status     string                `json:"status"`
	IssuedAt   time.Time             `json:"issued_at"`
	DueAt      time.Time             `json:"due_at"`
	PaidAt     *time.Time            `json:"paid_at,omitempty"`
	ArchivedAt *time.Time            `json:"archived_at,omitempty"`
	Items      []InvoiceItemResponse `json:"items"`
}

type PromoBalanceResponse struct {
	PhotosRemaining int `json:"photos_remaining"`
}

type ReferralCodeResponse struct {
	Code        string `json:"code"`
	RewardCents int64  `json:"reward_cents"`
}

type PromoCodeResponse struct {
	ID                  string     `json:"id"`
	Code                string     `json:"code"`
	PhotosPerRedemption int        `json:"photos_per_redemption"`
	PoolTotal           int        `json:"pool_total"`
	PoolRemaining       int        `json:"pool_remaining"`
	Active              bool       `json:"active"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type ReferralResponse struct {
	ID          string    `json:"id"`
	ReferrerID  string    `json:"referrer_id"`
	ReferredID  string    `json:"referred_id"`
	Code        string    `json:"code"`
	RewardCents int64     `json:"reward_cents"`
	RewardPaid  bool      `json:"reward_paid"`
	CreatedAt   time.Time `json:"created_at"`
}

type GalleryExampleResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	BeforeURL string `json:"before_url"`
	AfterURL  string `json:"after_url"`
	SortOrder int    `json:"sort_order"`
}

type BlogPostResponse struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Body        string     `json:"body"`
	CoverURL    string     `json:"cover_url,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type HomepageImageResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
}

type CompanyInfoResponse struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	VATNumber string    `json:"vat_number,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PricingResponse struct {
	PricePerPhotoCents int64     `json:"price_per_photo_cents"`
	Currency           string    `json:"currency"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ClientResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	FullName         string `json:"full_name,omitempty"`
	IsVIP            bool   `json:"is_vip"`
	DeferredBilling  bool   `json:"deferred_billing"`
	BillingName      string `json:"billing_name,omitempty"`
	BillingAddress   string `json:"billing_address,omitempty"`
	BillingCity      string `json:"billing_city,omitempty"`
	BillingPostal    string `json:"billing_postal,omitempty"`
	BillingCountry   string `json:"billing_country,omitempty"`
	VATNumber        string `json:"vat_number,omitempty"`
	AdminNotes       string `json:"admin_notes,omitempty"`
	OrderCount       int    `json:"order_count"`
	UnbilledPhotos   int    `json:"unbilled_photos"`
	OutstandingCents int64  `json:"outstanding_cents"`
}

type SweepReportResponse struct {
	UsersInvoiced  int   `json:"users_invoiced"`
	OrdersInvoiced int   `json:"orders_invoiced"`
	TotalCents     int64 `json:"total_cents"`
}
