package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSymbol() Symbol {
	return Symbol{
		Name:    "Lookup",
		Kind:    KindFunction,
		Package: "index",
		File:    "/proj/index/index.go",
		Scope:   ScopeExported,
		Start:   Position{Line: 10, Column: 1},
		End:     Position{Line: 14, Column: 2},
	}
}

func TestSymbolValidate(t *testing.T) {
	sym := validSymbol()
	require.NoError(t, sym.Validate())

	tests := []struct {
		name   string
		mutate func(*Symbol)
	}{
		{"missing name", func(s *Symbol) { s.Name = "" }},
		{"invalid kind", func(s *Symbol) { s.Kind = "macro" }},
		{"missing package", func(s *Symbol) { s.Package = "" }},
		{"method without receiver", func(s *Symbol) { s.Kind = KindMethod; s.Receiver = "" }},
		{"non-positive line", func(s *Symbol) { s.Start.Line = 0 }},
		{"start after end", func(s *Symbol) { s.Start.Line = 20 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSymbol()
			tc.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestSymbolValidateKind(t *testing.T) {
	for _, kind := range []SymbolKind{
		KindFunction, KindMethod, KindStruct, KindInterface,
		KindType, KindConst, KindVar, KindField,
	} {
		s := Symbol{Kind: kind}
		assert.NoError(t, s.ValidateKind(), string(kind))
	}

	s := Symbol{Kind: "enum"}
	assert.Error(t, s.ValidateKind())
}

func TestSymbolIsExported(t *testing.T) {
	exported := Symbol{Name: "Lookup", Scope: ScopeExported}
	assert.True(t, exported.IsExported())

	unexported := Symbol{Name: "lookup", Scope: ScopeUnexported}
	assert.False(t, unexported.IsExported())

	// Scope must agree with the name's own capitalization.
	mismatched := Symbol{Name: "lookup", Scope: ScopeExported}
	assert.False(t, mismatched.IsExported())
}
