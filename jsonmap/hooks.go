package jsonmap

// Completer is implemented by shapes that derive fields once mapping has
// populated the raw ones.
type Completer interface {
	MappingCompleted() error
}

// MapperCompleter is like Completer but receives the Mapper, which allows a
// second mapping pass over embedded JSON text.
type MapperCompleter interface {
	MappingCompletedWithMapper(m *Mapper) error
}

// Hook is a post-mapping callback.
type Hook func(m *Mapper) error

// Hooker lets a shape declare any number of ordered hooks. They run after
// MappingCompleted and MappingCompletedWithMapper.
type Hooker interface {
	MappingHooks() []Hook
}

func (m *Mapper) runHooks(x interface{}) error {
	if c, ok := x.(Completer); ok {
		if err := c.MappingCompleted(); err != nil {
			return err
		}
	}
	if c, ok := x.(MapperCompleter); ok {
		if err := c.MappingCompletedWithMapper(m); err != nil {
			return err
		}
	}
	if h, ok := x.(Hooker); ok {
		for _, hook := range h.MappingHooks() {
			if err := hook(m); err != nil {
				return err
			}
		}
	}
	return nil
}
