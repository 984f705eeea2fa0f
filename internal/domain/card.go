package domain

// Pair is a single question-answer-context entry from a deck source.
type Pair struct {
	Question string
	Answer   string
	Context  string
}

// Card is a Pair placed in a review deck. ID is its position in the deck
// and never changes after the deck is built.
type Card struct {
	ID       int    `json:"id" validate:"gte=0"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Context  string `json:"context,omitempty"`
	Status   Status `json:"status"`
}

// NewCard builds an unreviewed card from a source pair.
func NewCard(id int, p Pair) Card {
	return Card{
		ID:       id,
		Question: p.Question,
		Answer:   p.Answer,
		Context:  p.Context,
		Status:   Unset,
	}
}
