package domain

import "errors"

// ErrAlreadySeen is returned by the seen store when an identity is already
// recorded for a category. Under single-writer operation it signals a logic
// race rather than data loss; callers log it and treat the posting as seen.
var ErrAlreadySeen = errors.New("posting already recorded for category")
