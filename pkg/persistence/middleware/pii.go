package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Mask replaces the value of every masked attribute.
const Mask = "***"

type piiMiddleware struct {
	next     ports.RecordStore
	patterns []*regexp.Regexp
	keep     map[string]bool
}

// NewPIIMiddleware creates a middleware that masks values of attributes whose
// keys match the patterns. Keys listed in keep are never masked, which is how
// the state field of a machine survives the round trip.
func NewPIIMiddleware(patternStrings []string, keep ...string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	keepSet := make(map[string]bool, len(keep))
	for _, k := range keep {
		keepSet[k] = true
	}
	return func(next ports.RecordStore) ports.RecordStore {
		return &piiMiddleware{next: next, patterns: patterns, keep: keepSet}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, record *domain.Record) error {
	// Clone so the caller's in-memory record keeps the real values.
	cloned := record.Clone()
	cloned.Attributes = deepCopyMap(record.Attributes)

	m.maskMap(cloned.Attributes, true)

	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Record, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

// maskMap masks matching keys; the keep list only applies at the top level.
func (m *piiMiddleware) maskMap(attrs map[string]any, top bool) {
	for k, v := range attrs {
		if top && m.keep[k] {
			continue
		}
		masked := false
		for _, p := range m.patterns {
			if p.MatchString(k) {
				attrs[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			m.maskMap(subMap, false)
		}
	}
}
