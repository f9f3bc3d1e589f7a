package query

// Kind is the storage type of a queryable field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindTime
	KindStringArray
	KindID
	// KindRelation is a populated relation. It can be selected but has no column.
	KindRelation
)

type Field struct {
	Column string
	Kind   Kind
}

// Schema maps the public (JSON) field names of a resource to their storage.
type Schema map[string]Field

// Validate rejects descriptors that reference fields outside the schema, and
// filters or sort keys on relations.
func (s Schema) Validate(d Descriptor) error {
	for _, f := range d.Fields() {
		if _, ok := s[f]; !ok {
			return &Error{Key: f, Reason: "unknown field"}
		}
	}

	for f := range d.Filter {
		if s[f].Kind == KindRelation {
			return &Error{Key: f, Reason: "relation cannot be filtered"}
		}
	}

	for _, k := range d.Sort {
		if s[k.Field].Kind == KindRelation {
			return &Error{Key: k.Field, Reason: "relation cannot be sorted"}
		}
	}

	return nil
}
