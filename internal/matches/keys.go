package matches

import (
	"fmt"
	"sort"

	"github.com/hetulpatel/arbscanner/internal/hashutil"
	"github.com/hetulpatel/arbscanner/internal/models"
)

// PairKey builds an order-independent composite key "venue:id|venue:id".
func PairKey(a, b *models.Market) string {
	if a == nil || b == nil {
		return ""
	}
	parts := []string{
		fmt.Sprintf("%s:%s", a.Venue, a.ID),
		fmt.Sprintf("%s:%s", b.Venue, b.ID),
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s|%s", parts[0], parts[1])
}

// TextKey identifies a market's scoring text, for caches of derived data
// (embeddings, extracted entities) that must refresh when the text changes.
func TextKey(text string) string {
	return hashutil.HashStrings(text)
}

// PairDigest is a fixed-length hash of the pair key, for storage keys.
func PairDigest(a, b *models.Market) string {
	if a == nil || b == nil {
		return ""
	}
	return hashutil.HashUnordered(
		fmt.Sprintf("%s:%s", a.Venue, a.ID),
		fmt.Sprintf("%s:%s", b.Venue, b.ID),
	)
}
