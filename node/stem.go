package node

import "strconv"

// NewStem creates a new Stem instance with the provided stem and namespace.
// The nil namespace is treated as a free namespace, meaning all names are available.
func NewStem(stem string, namespace map[string]struct{}) *Stem {
	return &Stem{
		taken: namespace,
		stem:  stem,
	}
}

// Stem hands out numbered names, e.g. "obj1", "obj2", skipping taken ones.
type Stem struct {
	taken  map[string]struct{}
	stem   string
	last   int
	labels map[any]string
}

func (s *Stem) Next() string {
	if s.taken == nil {
		s.taken = make(map[string]struct{})
	}

	for {
		s.last++
		name := s.stem + strconv.Itoa(s.last)

		if _, ok := s.taken[name]; !ok {
			s.taken[name] = struct{}{}
			return name
		}
	}
}

// Label returns the name given to key, naming it on first use.
func (s *Stem) Label(key any) string {
	if name, ok := s.labels[key]; ok {
		return name
	}

	if s.labels == nil {
		s.labels = make(map[any]string)
	}

	name := s.Next()
	s.labels[key] = name

	return name
}

// Labeled reports whether key has been named.
func (s *Stem) Labeled(key any) bool {
	_, ok := s.labels[key]
	return ok
}
