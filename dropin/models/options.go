package models

// RequestOptions is the caller-supplied configuration for one drop-in
// payment collection request. Credential and ThreeDSecure are mandatory;
// everything else is optional.
type RequestOptions struct {
	Credential          string               `json:"credential"`
	DisableVaultManager bool                 `json:"disableVaultManager"`
	ThreeDSecure        *ThreeDSecureOptions `json:"threeDSecure"`
	CurrencyCode        string               `json:"currencyCode,omitempty"`
	// WalletMerchantID selects the wallet environment: the literal value
	// "test" targets the TEST environment, anything else PRODUCTION.
	WalletMerchantID string `json:"walletMerchantId,omitempty"`
}

// ThreeDSecureOptions carries the cardholder fields required to build a
// 3-D Secure verification request. All fields are required.
type ThreeDSecureOptions struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	PhoneNumber    string `json:"phoneNumber"`
	StreetAddress  string `json:"streetAddress"`
	StreetAddress2 string `json:"streetAddress2"`
	City           string `json:"city"`
	Region         string `json:"region"`
	PostalCode     string `json:"postalCode"`
	CountryCode    string `json:"countryCode"`
	Amount         string `json:"amount"`
	Email          string `json:"email"`
}
