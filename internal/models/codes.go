package models

import (
	"fmt"
	"strconv"
	"strings"
)

var codePrefixes = map[DocumentType]string{
	TypeManual:      "MAN",
	TypeProcedure:   "PROC",
	TypeInstruction: "INS",
	TypeFormat:      "FOR",
	TypeRecord:      "REG",
	TypePolicy:      "POL",
	TypeOther:       "DOC",
}

// CodePrefix returns the fixed code prefix for t.
func (t DocumentType) CodePrefix() string {
	if p, ok := codePrefixes[t]; ok {
		return p
	}
	return codePrefixes[TypeOther]
}

// FormatCode renders the n-th code of type t, zero-padded to three digits.
// Numbers past 999 keep growing in width.
func FormatCode(t DocumentType, n int) string {
	return fmt.Sprintf("%s-%03d", t.CodePrefix(), n)
}

// CodeNumber extracts the numeric suffix of a code belonging to type t.
// Codes of other types or with a non-numeric suffix report ok=false.
func CodeNumber(t DocumentType, code string) (n int, ok bool) {
	rest, found := strings.CutPrefix(code, t.CodePrefix()+"-")
	if !found || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextCodeNumber returns max(existing suffixes, floor)+1. floor carries the
// value of a persisted counter so deleted documents never free their number.
func NextCodeNumber(t DocumentType, codes []string, floor int) int {
	highest := floor
	for _, c := range codes {
		if n, ok := CodeNumber(t, c); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}
