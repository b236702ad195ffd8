package domain

import "time"

// Event is one row of the economic calendar: a single scheduled
// macroeconomic release for one currency. Records are rebuilt from scratch
// on every poll; identity across polls flows through the message fingerprint
// only, never through object comparison.
type Event struct {
	Name       string    `json:"name"`
	Importance int       `json:"importance"` // 0-3, from the page's star rating
	Time       string    `json:"time"`       // time of day as listed, e.g. "13:30"
	Currency   string    `json:"currency"`
	Previous   string    `json:"previous"`
	Forecast   string    `json:"forecast"`
	Actual     string    `json:"actual"` // empty until the release happens
	Date       time.Time `json:"date"`   // calendar day the snapshot covers
}

// Released reports whether the actual value has been published.
func (e Event) Released() bool {
	return e.Actual != ""
}

// DefaultCurrencies is the allow-list used when CURRENCIES is not configured.
var DefaultCurrencies = []string{"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY"}

// CurrencySet builds a lookup set from a currency code list.
func CurrencySet(currencies []string) map[string]struct{} {
	set := make(map[string]struct{}, len(currencies))
	for _, c := range currencies {
		set[c] = struct{}{}
	}
	return set
}
