package bootcamp

import "encoding/json"

// Ref points at a bootcamp from a child record. It renders as the bare id
// until the summary is populated.
type Ref struct {
	ID      string
	Summary *Summary
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Summary != nil {
		return json.Marshal(r.Summary)
	}
	return json.Marshal(r.ID)
}
