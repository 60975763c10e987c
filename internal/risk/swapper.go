package risk

import "sync/atomic"

// Swapper wraps a Classifier whose keyword sets can be replaced at runtime,
// e.g. when the keyword override file changes on disk. Reads are lock-free.
type Swapper struct {
	current atomic.Pointer[Classifier]
}

func NewSwapper(c *Classifier) *Swapper {
	s := &Swapper{}
	if c == nil {
		c = NewClassifier()
	}
	s.current.Store(c)
	return s
}

// Replace installs a new classifier. In-flight classifications finish on the
// old one.
func (s *Swapper) Replace(c *Classifier) {
	if c != nil {
		s.current.Store(c)
	}
}

func (s *Swapper) Classify(query string) Level {
	return s.current.Load().Classify(query)
}

func (s *Swapper) ClassifyDetailed(query string) Classification {
	return s.current.Load().ClassifyDetailed(query)
}
