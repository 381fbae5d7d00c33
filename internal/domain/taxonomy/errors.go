package taxonomy

import "errors"

// ErrUnknownDimension is returned when a report is requested over a
// dimension the analyzer does not aggregate.
var ErrUnknownDimension = errors.New("unknown taxonomy dimension")
