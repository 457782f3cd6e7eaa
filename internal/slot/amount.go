// Package slot canonicalizes raw entity strings into the values stored in a session.
package slot

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-assistant/internal/common"
	"github.com/Veraticus/spice-assistant/internal/model"
)

var errUnsupportedCurrency = errors.New("currency conversion is not supported")

var amountPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z$¥€元]*)$`)

// localUnits are the units accepted without conversion.
var localUnits = map[string]bool{
	"":     true,
	"¥":    true,
	"元":    true,
	"cny":  true,
	"rmb":  true,
	"yuan": true,
}

// Amount parses a raw amount such as "50", "12.5 yuan" or "¥30" into a fixed
// two-decimal string.
func Amount(raw string) (string, error) {
	value, err := ParseAmount(raw)
	if err != nil {
		return "", err
	}
	return value.StringFixed(2), nil
}

// ParseAmount parses a raw amount into a decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "¥") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "¥"))
	}

	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, common.ValidationError(model.FieldAmount, raw, nil)
	}

	unit := strings.ToLower(m[2])
	if !localUnits[unit] {
		return decimal.Zero, common.ValidationError(model.FieldAmount, raw, errUnsupportedCurrency)
	}

	value, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, common.ValidationError(model.FieldAmount, raw, err)
	}
	return value, nil
}

// LooksLikeAmount reports whether the whole utterance is an amount.
func LooksLikeAmount(text string) bool {
	_, err := ParseAmount(text)
	return err == nil
}
