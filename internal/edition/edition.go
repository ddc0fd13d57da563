// Package edition models Verity language editions. Editions are
// semantic versions; grammar extensions are gated on version
// constraints so older codebases keep their exact parse behavior.
package edition

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
)

// Edition identifies a language edition a source file is parsed under.
type Edition struct {
	version *semver.Version
}

// contractExpressionsGate is the minimum edition that accepts the
// parenthesized contract-expression forms in(...), out(...), and
// invariant(...). Older editions only accept the block forms.
var contractExpressionsGate = mustConstraint(">= 2.1.0-0")

func mustConstraint(expr string) *semver.Constraints {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		panic(fmt.Sprintf("edition: invalid gate constraint %q: %v", expr, err))
	}
	return c
}

// Parse parses an edition string like "2.1.0" or "2.1".
func Parse(s string) (*Edition, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("edition: invalid edition %q: %w", s, err)
	}
	return &Edition{version: v}, nil
}

// Latest returns the newest edition this front end implements.
func Latest() *Edition {
	return &Edition{version: semver.MustParse("2.1.0")}
}

// String returns the edition version string.
func (e *Edition) String() string {
	return e.version.String()
}

// SupportsContractExpressions reports whether the contract-expression
// grammar extension is enabled under this edition.
func (e *Edition) SupportsContractExpressions() bool {
	return contractExpressionsGate.Check(e.version)
}

// Compare orders two editions by version.
func (e *Edition) Compare(other *Edition) int {
	return e.version.Compare(other.version)
}
