// pkg/normalizer/derive.go
package normalizer

import (
	"regexp"
	"strconv"

	"github.com/transito-gt/tablero/pkg/model"
)

// derivedRule is a DerivedField with its pattern compiled once per
// normalization instead of once per record.
type derivedRule struct {
	name    string
	from    string
	re      *regexp.Regexp
	mapping map[string]int
}

func compileDerived(fields []model.DerivedField) ([]derivedRule, error) {
	rules := make([]derivedRule, 0, len(fields))
	for _, f := range fields {
		r := derivedRule{name: f.Name, from: f.From, mapping: f.Mapping}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, err
			}
			r.re = re
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// apply computes the derived ordinal for one record. Failure to match or
// look up leaves the field unset; some table variants lack the structure.
func (r derivedRule) apply(rec *model.CanonicalRecord, categoryName string) {
	var src string
	if r.from == categoryName {
		src = rec.Category
	} else {
		var ok bool
		src, ok = rec.Identifiers[r.from]
		if !ok {
			return
		}
	}

	if r.re != nil {
		m := r.re.FindStringSubmatch(src)
		if m == nil {
			return
		}
		capture := m[0]
		if len(m) > 1 {
			capture = m[1]
		}
		n, err := strconv.Atoi(capture)
		if err != nil {
			return
		}
		setDerived(rec, r.name, n)
		return
	}

	if n, ok := r.mapping[src]; ok {
		setDerived(rec, r.name, n)
	}
}

func setDerived(rec *model.CanonicalRecord, name string, value int) {
	if rec.Derived == nil {
		rec.Derived = make(map[string]int, 1)
	}
	rec.Derived[name] = value
}
