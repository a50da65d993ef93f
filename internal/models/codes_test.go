package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "PROC-001", FormatCode(TypeProcedure, 1))
	assert.Equal(t, "MAN-042", FormatCode(TypeManual, 42))
	assert.Equal(t, "FOR-1000", FormatCode(TypeFormat, 1000))
	assert.Equal(t, "DOC-007", FormatCode(TypeOther, 7))
}

func TestCodeNumber(t *testing.T) {
	tests := []struct {
		name string
		t    DocumentType
		code string
		want int
		ok   bool
	}{
		{"padded", TypeProcedure, "PROC-003", 3, true},
		{"wide", TypeProcedure, "PROC-1200", 1200, true},
		{"other type", TypeProcedure, "MAN-003", 0, false},
		{"non numeric", TypeProcedure, "PROC-abc", 0, false},
		{"empty suffix", TypeProcedure, "PROC-", 0, false},
		{"empty", TypeProcedure, "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := CodeNumber(tt.t, tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestNextCodeNumber(t *testing.T) {
	assert.Equal(t, 1, NextCodeNumber(TypeProcedure, nil, 0))
	assert.Equal(t, 4, NextCodeNumber(TypeProcedure, []string{"PROC-001", "PROC-003", "MAN-009"}, 0))
	assert.Equal(t, 6, NextCodeNumber(TypeProcedure, []string{"PROC-001"}, 5), "floor wins over lower codes")
}

func TestParseDocumentType(t *testing.T) {
	for in, want := range map[string]DocumentType{
		"procedure":     TypeProcedure,
		"Procedimiento": TypeProcedure,
		" formato ":     TypeFormat,
		"política":      TypePolicy,
		"instruccion":   TypeInstruction,
		"manual":        TypeManual,
	} {
		got, err := ParseDocumentType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDocumentType("memo")
	assert.Error(t, err)
}
