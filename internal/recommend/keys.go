// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import "strconv"

// GraphSnapshotKey holds the serialized similarity graph.
const GraphSnapshotKey = "similarity:graph"

// RecommendKey is recommend:{userId}:{itemId}:{categoryId}, 0 for absent ids.
func RecommendKey(userID, itemID, categoryID int64) string {
	b := make([]byte, 0, 48)
	b = append(b, "recommend:"...)
	b = strconv.AppendInt(b, userID, 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, itemID, 10)
	b = append(b, ':')
	b = strconv.AppendInt(b, categoryID, 10)
	return string(b)
}

// PopularityKey is popularity:{categoryId}, 0 for the global list.
func PopularityKey(categoryID int64) string {
	return "popularity:" + strconv.FormatInt(categoryID, 10)
}
