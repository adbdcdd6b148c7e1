package ident

import (
	"fmt"
	"strconv"
	"strings"
)

// Next returns prefix followed by one more than the highest numeric suffix found among
// existing ids carrying that prefix, zero-padded to width. Ids with another prefix or a
// non-numeric suffix are skipped.
func Next(existing []string, prefix string, width int) string {
	highest := 0
	for _, id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		suffix := id[len(prefix):]
		if suffix == "" {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 || strings.HasPrefix(suffix, "+") {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, width, highest+1)
}
