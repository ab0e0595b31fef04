package matches

import "github.com/hetulpatel/arbscanner/internal/models"

// Pair indexes one market in catalog A and one in catalog B.
type Pair struct {
	A int
	B int
}

// Breakdown records the signals that went into a candidate's score.
// DateProximity is only meaningful when HasDateProximity is set.
type Breakdown struct {
	TitleSimilarity  float64 `json:"title_similarity"`
	EntityScore      float64 `json:"entity_score"`
	CategoryMatch    bool    `json:"category_match"`
	DateProximity    float64 `json:"date_proximity"`
	HasDateProximity bool    `json:"has_date_proximity"`
}

// Candidate is a pair of markets believed to describe the same event.
type Candidate struct {
	A          models.Market `json:"a"`
	B          models.Market `json:"b"`
	Similarity float64       `json:"similarity"`
	Breakdown  Breakdown     `json:"breakdown"`
	Factors    []string      `json:"factors,omitempty"`
}

// Key is the composite pair key of the two markets.
func (c *Candidate) Key() string {
	if c == nil {
		return ""
	}
	return PairKey(&c.A, &c.B)
}
