package reconcile

import "fmt"

// MissingEntityError reports a referenced entity (class, field or UDF) that
// cannot be located in the environment expected to contain it.
type MissingEntityError struct {
	Kind string // "class", "field" or "udf"
	Ref  string // name or identifier used for the lookup
}

func (e *MissingEntityError) Error() string {
	return fmt.Sprintf("reconcile: %s not found: %s", e.Kind, e.Ref)
}

// UnmappedReferenceError reports a field or class identifier embedded in a
// validation rule that has no entry in the identifier mapping. References are
// never silently dropped or zeroed; the run aborts instead.
type UnmappedReferenceError struct {
	Rule string // rule name
	ID   string // unmapped identifier
}

func (e *UnmappedReferenceError) Error() string {
	return fmt.Sprintf("reconcile: rule %q references unmapped identifier %s", e.Rule, e.ID)
}
