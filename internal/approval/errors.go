package approval

import "errors"

var (
	// ErrReviewRequired is a policy rejection: the draft needs human
	// review and the approval carried neither an edit nor an explicit
	// override acknowledgment.
	ErrReviewRequired = errors.New("draft requires human review: edit the text or set override")

	// ErrAlreadyDecided guards against duplicate approval submissions
	ErrAlreadyDecided = errors.New("draft already decided")

	// ErrDraftNotFound is returned when the referenced draft does not exist
	ErrDraftNotFound = errors.New("draft not found")
)
