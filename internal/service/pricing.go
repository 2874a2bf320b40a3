package service

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/me/storecms/pkg/model"
)

// Pricing is the storefront price of a product across its additionals.
type Pricing struct {
	Price float64 `json:"price"`
	// OriginalPrice is set only when a discount lowers the price.
	OriginalPrice *float64 `json:"original_price,omitempty"`
}

// DiscountedPrice applies an additional's discount. The result is never
// negative.
func DiscountedPrice(a model.ProductAdditional) float64 {
	after := a.Price
	if a.Discount > 0 {
		if strings.EqualFold(a.DiscountType, model.DiscountPercentage) {
			after = a.Price - a.Price*a.Discount/100
		} else {
			after = a.Price - a.Discount
		}
	}
	return math.Max(after, 0)
}

// ComputePricing returns the lowest discounted price and, when it is below
// the lowest base price, that base price. Both are rounded to cents.
func ComputePricing(additionals []model.ProductAdditional) Pricing {
	if len(additionals) == 0 {
		return Pricing{}
	}
	minBase := lo.MinBy(additionals, func(a, b model.ProductAdditional) bool { return a.Price < b.Price }).Price
	minAfter := lo.Min(lo.Map(additionals, func(a model.ProductAdditional, _ int) float64 { return DiscountedPrice(a) }))

	p := Pricing{Price: round2(minAfter)}
	if minAfter < minBase {
		orig := round2(minBase)
		p.OriginalPrice = &orig
	}
	return p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseAttributes decodes an additional's `[{key, value}]` attribute list.
// Malformed input and entries without string key and value are skipped.
func ParseAttributes(raw string) []model.AttributePair {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	var out []model.AttributePair
	for _, e := range entries {
		k, kok := e["key"].(string)
		v, vok := e["value"].(string)
		if kok && vok {
			out = append(out, model.AttributePair{Key: k, Value: v})
		}
	}
	return out
}

var (
	colorKey = regexp.MustCompile(`(?i)color`)
	sizeKey  = regexp.MustCompile(`(?i)size`)
)

// collectAttributes merges the attributes of all additionals, keeping the
// first occurrence of each key/value pair.
func collectAttributes(additionals []model.ProductAdditional) []model.AttributePair {
	all := lo.FlatMap(additionals, func(a model.ProductAdditional, _ int) []model.AttributePair {
		return ParseAttributes(a.Attributes)
	})
	return lo.Uniq(all)
}

// valuesForKey returns the distinct values of attributes whose key matches re.
func valuesForKey(attrs []model.AttributePair, re *regexp.Regexp) []string {
	matching := lo.Filter(attrs, func(kv model.AttributePair, _ int) bool { return re.MatchString(kv.Key) })
	return lo.Uniq(lo.Map(matching, func(kv model.AttributePair, _ int) string { return kv.Value }))
}
