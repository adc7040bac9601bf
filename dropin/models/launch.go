package models

// Wallet environment labels, selected from the merchant id at build time.
const (
	WalletEnvTest       = "TEST"
	WalletEnvProduction = "PRODUCTION"
)

// ThreeDSecureVersion2 is the verification protocol version requested for
// every launch.
const ThreeDSecureVersion2 = "2"

// PostalAddress is the billing address attached to a 3-D Secure request.
type PostalAddress struct {
	GivenName         string
	Surname           string
	PhoneNumber       string
	StreetAddress     string
	ExtendedAddress   string
	Locality          string
	Region            string
	PostalCode        string
	CountryCodeAlpha2 string
}

// ThreeDSecureRequest is the assembled verification request handed to the
// external flow. The billing address doubles as the additional-information
// shipping address.
type ThreeDSecureRequest struct {
	Amount           string
	Email            string
	BillingAddress   PostalAddress
	ShippingAddress  PostalAddress
	VersionRequested string
}

// WalletRequest configures the optional wallet payment path. Present only
// when merchant id, currency and amount were all supplied and valid.
type WalletRequest struct {
	MerchantID   string
	CurrencyCode string
	TotalPrice   string
	// PriceFinal marks the total as final rather than an estimate.
	PriceFinal  bool
	Environment string
}

// LaunchParameters is everything the external flow launcher needs to start
// the payment collection UI.
type LaunchParameters struct {
	Credential          string
	VaultManagerEnabled bool
	ThreeDSecure        ThreeDSecureRequest
	// Wallet is nil when wallet payment is unavailable for this request.
	Wallet *WalletRequest
}
