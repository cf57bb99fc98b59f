package dataprocessing

import (
	"fmt"
	"sort"

	"bikepulse/internal/dataset"
)

// indicatorSubset holds one indicator's values keyed by area code
type indicatorSubset struct {
	Name   string
	Values map[string]*float64
	Names  map[string]string
}

// extractSubset collects the value column of the rows matching keep. Each
// area code may appear at most once.
func extractSubset(join, name string, t *dataset.Table, keep func(dataset.Row) bool) (*indicatorSubset, error) {
	s := &indicatorSubset{
		Name:   name,
		Values: make(map[string]*float64),
		Names:  make(map[string]string),
	}

	err := t.Each(func(r dataset.Row) error {
		if !keep(r) {
			return nil
		}
		code := r.Get(colLACode)
		if _, dup := s.Values[code]; dup {
			return &JoinError{Join: join, Kind: JoinDuplicateKey, Subset: name, Key: code}
		}
		v, err := dataset.ParseOptionalFloat(r.Get(colValue))
		if err != nil {
			return fmt.Errorf("%s line %d: %w", t.Name, r.Line, err)
		}
		s.Values[code] = v
		s.Names[code] = r.Get(colLAName)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// mergedArea is one area after merging its indicator subsets; Values is in
// subset order.
type mergedArea struct {
	Code   string
	Name   string
	Values []*float64
}

// mergeSubsets joins single-indicator subsets on area code. Every subset
// must hold exactly the first subset's key set, and the merged table must
// have one row per key.
func mergeSubsets(join string, subsets ...*indicatorSubset) ([]mergedArea, error) {
	if len(subsets) == 0 {
		return nil, nil
	}

	base := subsets[0]
	keys := make([]string, 0, len(base.Values))
	for code := range base.Values {
		keys = append(keys, code)
	}
	sort.Strings(keys)

	for _, s := range subsets[1:] {
		if err := compareKeys(join, base, s); err != nil {
			return nil, err
		}
	}

	merged := make([]mergedArea, 0, len(keys))
	for _, code := range keys {
		area := mergedArea{Code: code, Name: base.Names[code], Values: make([]*float64, len(subsets))}
		for i, s := range subsets {
			area.Values[i] = s.Values[code]
		}
		merged = append(merged, area)
	}

	if len(merged) != len(base.Values) {
		return nil, &JoinError{Join: join, Kind: JoinRowCount, Subset: "merged", Expected: len(base.Values), Actual: len(merged)}
	}
	return merged, nil
}

func compareKeys(join string, base, other *indicatorSubset) error {
	var missing, extra []string
	for code := range base.Values {
		if _, ok := other.Values[code]; !ok {
			missing = append(missing, code)
		}
	}
	for code := range other.Values {
		if _, ok := base.Values[code]; !ok {
			extra = append(extra, code)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return &JoinError{
		Join:     join,
		Kind:     JoinKeyMismatch,
		Subset:   other.Name,
		Expected: len(base.Values),
		Actual:   len(other.Values),
		Missing:  missing,
		Extra:    extra,
	}
}

// subtract returns a-b, or nil when either side is missing
func subtract(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a - *b
	return &v
}
