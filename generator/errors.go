package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasefe/dbmldoc/schema"
)

// ErrStructural is matched by every StructuralError.
var ErrStructural = errors.New("structural integrity violation")

// StructuralError reports malformed schema data that cannot be documented
// without misrepresenting it: a ref without exactly two endpoints, a ref
// matching the same table on both sides, or a broken table group.
type StructuralError struct {
	// Subject names the offending ref or table group.
	Subject string
	// Reason describes the violation.
	Reason string
}

// Error returns the error string.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrStructural, e.Subject, e.Reason)
}

// Is reports whether target is ErrStructural.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

func refLabel(ref schema.Ref) string {
	if ref.Name != "" {
		return "ref " + ref.Name
	}

	sides := make([]string, 0, len(ref.Endpoints))
	for _, ep := range ref.Endpoints {
		sides = append(sides, endpointIdentifier(ep))
	}
	return "ref " + strings.Join(sides, " - ")
}
