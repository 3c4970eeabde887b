package model

import "strings"

var coverAliases = map[string]CoverType{
	"p&i":                           CoverPI,
	"p & i":                         CoverPI,
	"p and i":                       CoverPI,
	"protection & indemnity":        CoverPI,
	"protection and indemnity":      CoverPI,
	"h&m":                           CoverHM,
	"h & m":                         CoverHM,
	"h&m (hull)":                    CoverHM,
	"hull & machinery":              CoverHM,
	"hull and machinery":            CoverHM,
	"hull":                          CoverHM,
	"cargo":                         CoverCargo,
	"charterers' liability":         CoverCharterersLiability,
	"charterers liability":          CoverCharterersLiability,
	"charterer's liability":         CoverCharterersLiability,
	"charterer liability":           CoverCharterersLiability,
	"charterers’ liability":         CoverCharterersLiability,
	"fd&d":                          CoverFDD,
	"fdd":                           CoverFDD,
	"freight, demurrage & defence":  CoverFDD,
	"freight demurrage and defence": CoverFDD,
	"unclear / needs review":        CoverUnclear,
	"unclear":                       CoverUnclear,
	"needs review":                  CoverUnclear,
	"to be confirmed":               CoverUnclear,
}

// ParseCoverType resolves a cover name, including legacy spellings
func ParseCoverType(s string) (CoverType, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	t, ok := coverAliases[key]
	return t, ok
}
