package arcgis

import "fmt"

// LoadFailure is returned when the layer cannot be fetched or its response
// does not have the expected shape.
type LoadFailure struct {
	Op  string
	Err error
}

func (e *LoadFailure) Error() string {
	return fmt.Sprintf("load subregions: %s: %v", e.Op, e.Err)
}

func (e *LoadFailure) Unwrap() error {
	return e.Err
}
