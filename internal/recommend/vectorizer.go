// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxPriceBucket = 8
	minTokenLength = 3
)

// nameSeparators splits product names into tokens.
const nameSeparators = " \t\r\n,.;:!?-_/\\|()[]{}<>\"'`~@#$%^&*+=’"

// Vectorize builds the feature vector of an item. It is pure: the same item
// always produces the same vector.
//
//	cat:{categoryId}          1
//	brand:{brandId}           1, only for brandId > 0
//	price_bucket:{b}          1, b = clamp(floor(log10(price+1)), 0, 8)
//	name:{token}              1 per occurrence, tokens shorter than 3 dropped
func Vectorize(item *CatalogItem) FeatureVector {
	v := make(FeatureVector, 4)

	v.add("cat:" + strconv.FormatInt(item.CategoryID, 10))
	if item.BrandID > 0 {
		v.add("brand:" + strconv.FormatInt(item.BrandID, 10))
	}
	if item.DefaultPrice != nil {
		v.add("price_bucket:" + strconv.Itoa(PriceBucket(*item.DefaultPrice)))
	}
	for _, token := range Tokenize(item.Name) {
		v.add("name:" + token)
	}
	return v
}

func (v FeatureVector) add(term string) {
	v[strings.ToLower(term)]++
}

// PriceBucket returns floor(log10(price+1)) clamped to [0, 8]. It counts
// powers of ten instead of calling math.Log10 so exact powers (99 -> 2) do
// not round down.
func PriceBucket(price float64) int {
	x := price + 1
	if math.IsNaN(x) || x < 10 {
		return 0
	}
	b := 0
	for p := 10.0; b < maxPriceBucket && x >= p; p *= 10 {
		b++
	}
	return b
}

// Tokenize lower-cases name and splits it on nameSeparators, dropping tokens
// shorter than three characters.
func Tokenize(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return strings.ContainsRune(nameSeparators, r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Norm returns the Euclidean length of v.
func (v FeatureVector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}
