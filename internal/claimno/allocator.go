package claimno

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Prefix starts every claim number
const Prefix = "MC"

// Allocator assigns sequential claim numbers per organisation and year
type Allocator struct {
	org string
}

// NewAllocator creates an allocator for an organisation code
func NewAllocator(org string) *Allocator {
	org = strings.ToUpper(strings.TrimSpace(org))
	if org == "" {
		org = "NOVA"
	}
	return &Allocator{org: org}
}

// Org returns the organisation code
func (a *Allocator) Org() string {
	return a.org
}

// Allocate returns the next number for year given every number already
// issued. Numbers of other years or organisations are ignored. Callers must
// serialize allocation against the store.
func (a *Allocator) Allocate(existing []string, year int) string {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(fmt.Sprintf("%s-%s-%04d-", Prefix, a.org, year)) + `(\d{4,})$`)

	maxSeq := 0
	for _, n := range existing {
		m := pattern.FindStringSubmatch(strings.TrimSpace(n))
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return Format(a.org, year, maxSeq+1)
}

// Format composes a claim number
func Format(org string, year, seq int) string {
	return fmt.Sprintf("%s-%s-%04d-%04d", Prefix, org, year, seq)
}
