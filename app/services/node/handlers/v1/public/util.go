package public

import "strconv"

// parseIndex parses a block index path parameter.
func parseIndex(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 10, 64)
}
