package model

import (
	"fmt"
	"strings"
)

// Identifier holds the different names a substance (or segment) is known by.
// An empty field means the identifier is not set.
type Identifier struct {
	CAS       string `json:"cas,omitempty" yaml:"cas,omitempty"`               // CAS registry number
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`             // Common name
	IUPACName string `json:"iupac_name,omitempty" yaml:"iupac_name,omitempty"` // IUPAC name
	SMILES    string `json:"smiles,omitempty" yaml:"smiles,omitempty"`         // SMILES string
	InChI     string `json:"inchi,omitempty" yaml:"inchi,omitempty"`           // InChI
	Formula   string `json:"formula,omitempty" yaml:"formula,omitempty"`       // Molecular formula
}

// Scheme selects the identifier field used as matching key
type Scheme int

const (
	SchemeCAS Scheme = iota
	SchemeName
	SchemeIUPACName
	SchemeSMILES
	SchemeInChI
	SchemeFormula
)

var schemeNames = [...]string{
	SchemeCAS:       "cas",
	SchemeName:      "name",
	SchemeIUPACName: "iupac_name",
	SchemeSMILES:    "smiles",
	SchemeInChI:     "inchi",
	SchemeFormula:   "formula",
}

func (s Scheme) String() string {
	if s < 0 || int(s) >= len(schemeNames) {
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
	return schemeNames[s]
}

// ParseScheme converts a scheme name (case-insensitive) into a Scheme
func ParseScheme(name string) (Scheme, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	for i, s := range schemeNames {
		if s == n {
			return Scheme(i), nil
		}
	}
	return 0, fmt.Errorf("unknown identifier scheme %q (expected one of %s)", name, strings.Join(schemeNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// KeyFor returns the identifier field selected by scheme and whether it is set
func (id Identifier) KeyFor(scheme Scheme) (string, bool) {
	var v string
	switch scheme {
	case SchemeCAS:
		v = id.CAS
	case SchemeName:
		v = id.Name
	case SchemeIUPACName:
		v = id.IUPACName
	case SchemeSMILES:
		v = id.SMILES
	case SchemeInChI:
		v = id.InChI
	case SchemeFormula:
		v = id.Formula
	}
	return v, v != ""
}

// String renders all populated fields, e.g. Identifier(cas=74-82-8, name=methane)
func (id Identifier) String() string {
	var parts []string
	for i := range schemeNames {
		if v, ok := id.KeyFor(Scheme(i)); ok {
			parts = append(parts, schemeNames[i]+"="+v)
		}
	}
	return "Identifier(" + strings.Join(parts, ", ") + ")"
}
