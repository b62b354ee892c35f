package model

// Criteria is the current filter selection. An empty field places no
// constraint on that axis.
type Criteria struct {
	Department string
	Subregion  string
}

// Any reports whether neither axis is constrained.
func (c Criteria) Any() bool {
	return c.Department == "" && c.Subregion == ""
}

// Matches applies exact equality on each constrained axis.
func (c Criteria) Matches(f Feature) bool {
	if c.Department != "" && string(f.Attributes.DepartmentCode) != c.Department {
		return false
	}
	if c.Subregion != "" && string(f.Attributes.SubregionName) != c.Subregion {
		return false
	}
	return true
}
