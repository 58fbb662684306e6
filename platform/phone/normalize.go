// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a CRM record carries a national number and no country.
const DefaultRegion = "US"

// NormalizeE164 formats a phone number to E.164 using DefaultRegion.
// If parsing fails, it returns the trimmed input.
func NormalizeE164(input string) string {
	return NormalizeE164In(input, DefaultRegion)
}

// NormalizeE164In formats a phone number to E.164, interpreting national
// numbers in region. Region may be an ISO code or a country name the CRM
// reported; unknown names fall back to DefaultRegion.
func NormalizeE164In(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, regionCode(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizePtr normalizes an optional phone number.
func NormalizePtr(input *string, region string) *string {
	if input == nil {
		return nil
	}
	out := NormalizeE164In(*input, region)
	return &out
}

func regionCode(region string) string {
	r := strings.ToUpper(strings.TrimSpace(region))
	if len(r) == 2 && phonenumbers.GetCountryCodeForRegion(r) != 0 {
		return r
	}
	return DefaultRegion
}
