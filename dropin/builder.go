package dropin

import (
	"fmt"
	"strings"

	"github.com/alovak/dropin-bridge/dropin/models"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"
)

// Builder validates caller options and assembles the launch parameters for
// the external flow. It is a pure transformation: no state, no side effects
// beyond logging a skipped wallet configuration.
type Builder struct {
	logger *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{
		logger: logger.With(slog.String("component", "builder")),
	}
}

// Build assembles launch parameters from caller options. 3-D Secure
// misconfiguration fails the whole request; wallet misconfiguration only
// drops the wallet path. All failures are typed *Error values.
func (b *Builder) Build(opts models.RequestOptions) (*models.LaunchParameters, error) {
	if opts.Credential == "" {
		return nil, ErrMissingCredential
	}
	if opts.ThreeDSecure == nil {
		return nil, ErrMissingThreeDSecureConfig
	}

	address, err := buildAddress(opts.ThreeDSecure)
	if err != nil {
		return nil, Errf(CodeAddressConstructionFailed, "failed to prepare address: %v", err)
	}

	threeDS, err := buildThreeDSecureRequest(opts.ThreeDSecure, address)
	if err != nil {
		return nil, Errf(CodeThreeDSecureRequestFailed, "%v", err)
	}

	params := &models.LaunchParameters{
		Credential:          opts.Credential,
		VaultManagerEnabled: !opts.DisableVaultManager,
		ThreeDSecure:        *threeDS,
	}

	if wallet, err := buildWalletRequest(opts); err != nil {
		// Wallet payment degrades silently to "unavailable".
		b.logger.Info("skipping wallet configuration", slog.Any("err", err))
	} else {
		params.Wallet = wallet
	}

	return params, nil
}

func buildAddress(o *models.ThreeDSecureOptions) (*models.PostalAddress, error) {
	for name, v := range map[string]string{
		"firstName":     o.FirstName,
		"lastName":      o.LastName,
		"phoneNumber":   o.PhoneNumber,
		"streetAddress": o.StreetAddress,
		"city":          o.City,
		"region":        o.Region,
		"postalCode":    o.PostalCode,
	} {
		if v == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}
	if !isAlpha2(o.CountryCode) {
		return nil, fmt.Errorf("countryCode must be an ISO 3166-1 alpha-2 code, got %q", o.CountryCode)
	}
	return &models.PostalAddress{
		GivenName:         o.FirstName,
		Surname:           o.LastName,
		PhoneNumber:       o.PhoneNumber,
		StreetAddress:     o.StreetAddress,
		ExtendedAddress:   o.StreetAddress2,
		Locality:          o.City,
		Region:            o.Region,
		PostalCode:        o.PostalCode,
		CountryCodeAlpha2: strings.ToUpper(o.CountryCode),
	}, nil
}

func buildThreeDSecureRequest(o *models.ThreeDSecureOptions, address *models.PostalAddress) (*models.ThreeDSecureRequest, error) {
	if o.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if err := validateAmount(o.Amount); err != nil {
		return nil, err
	}
	return &models.ThreeDSecureRequest{
		Amount:         o.Amount,
		Email:          o.Email,
		BillingAddress: *address,
		// The billing address doubles as the additional-information
		// shipping address.
		ShippingAddress:  *address,
		VersionRequested: models.ThreeDSecureVersion2,
	}, nil
}

func buildWalletRequest(opts models.RequestOptions) (*models.WalletRequest, error) {
	if opts.WalletMerchantID == "" || opts.CurrencyCode == "" {
		return nil, fmt.Errorf("wallet merchant id and currency code are both required")
	}
	currency := strings.ToUpper(opts.CurrencyCode)
	if len(currency) != 3 || !isAlpha(currency) {
		return nil, fmt.Errorf("currencyCode must be an ISO 4217 code, got %q", opts.CurrencyCode)
	}
	env := models.WalletEnvProduction
	if opts.WalletMerchantID == "test" {
		env = models.WalletEnvTest
	}
	return &models.WalletRequest{
		MerchantID:   opts.WalletMerchantID,
		CurrencyCode: currency,
		TotalPrice:   opts.ThreeDSecure.Amount,
		PriceFinal:   true,
		Environment:  env,
	}, nil
}

func validateAmount(amount string) error {
	if amount == "" {
		return fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("amount must be a decimal number: %w", err)
	}
	if d.Sign() <= 0 {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	return nil
}

func isAlpha2(s string) bool {
	return len(s) == 2 && isAlpha(s)
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return len(s) > 0
}
