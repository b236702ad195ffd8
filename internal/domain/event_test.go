package domain

import "testing"

func TestReleased(t *testing.T) {
	if (Event{}).Released() {
		t.Fatal("event without an actual value should not be released")
	}
	if !(Event{Actual: "2.1%"}).Released() {
		t.Fatal("event with an actual value should be released")
	}
}

func TestCurrencySet(t *testing.T) {
	set := CurrencySet([]string{"USD", "EUR"})
	if len(set) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(set))
	}
	if _, ok := set["USD"]; !ok {
		t.Fatal("expected USD in set")
	}
	if _, ok := set["JPY"]; ok {
		t.Fatal("did not expect JPY in set")
	}
}

func TestEligible(t *testing.T) {
	allowed := CurrencySet(DefaultCurrencies)

	pending := Event{Name: "CPI (YoY)", Currency: "USD"}
	released := Event{Name: "CPI (YoY)", Currency: "USD", Actual: "2.1%"}
	exotic := Event{Name: "Trade Balance", Currency: "ZAR", Actual: "1.2B"}

	if Eligible(pending, allowed, true) {
		t.Fatal("pending event should be filtered when actuals are required")
	}
	if !Eligible(pending, allowed, false) {
		t.Fatal("pending event should pass when actuals are not required")
	}
	if !Eligible(released, allowed, true) {
		t.Fatal("released event on the allow-list should be eligible")
	}
	if Eligible(exotic, allowed, false) {
		t.Fatal("currency off the allow-list should never be eligible")
	}
}
