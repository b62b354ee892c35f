package features

import "github.com/rendis/subregiones/internal/model"

// Distinct collapses duplicate keys, keeping the order of first appearance.
// Empty keys (null or blank attributes) are left out: an empty option would
// select every feature, the same as no filter.
func Distinct(fs []model.Feature, key func(model.Feature) string) []string {
	seen := make(map[string]bool, len(fs))
	var out []string
	for _, f := range fs {
		k := key(f)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
