package feed

import "errors"

const (
	defaultLimit = 20
	maxLimit     = 50
)

// ValidateFeedQuery normalizes limits and rejects out-of-range values
func ValidateFeedQuery(query *FeedQuery) error {
	if query.Limit == 0 {
		query.Limit = defaultLimit
	}
	if query.Limit < 1 || query.Limit > maxLimit {
		return errors.New("limit must be between 1 and 50")
	}
	return nil
}
