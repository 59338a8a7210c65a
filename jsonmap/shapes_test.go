package jsonmap

import "fmt"

// Shapes shared by the tests in this package.

type Entity struct {
	ID   string `facebook:"id"`
	Type string `facebook:"type"`
}

type named struct {
	ID   string `facebook:"id"`
	Name string `facebook:"name"`
}

type location struct {
	City    string `facebook:"city"`
	Country string `facebook:"country"`
}

type post struct {
	ID        string   `facebook:"id"`
	Message   string   `facebook:"message"`
	Likes     int64    `facebook:"likes"`
	Shares    *int32   `facebook:"shares"`
	Ratio     float64  `facebook:"ratio"`
	Published bool     `facebook:"is_published"`
	From      *named   `facebook:"from"`
	Tags      []string `facebook:"tags"`
	Comment   string
}

type place struct {
	LocationText string    `facebook:"location"`
	Location     *location `facebook:"location"`
}

type hooked struct {
	Raw    string `facebook:"raw"`
	Fail   bool   `facebook:"fail"`
	Nested *named
	calls  []string
}

func (h *hooked) MappingCompleted() error {
	h.calls = append(h.calls, "completed")
	return nil
}

func (h *hooked) MappingCompletedWithMapper(m *Mapper) error {
	h.calls = append(h.calls, "mapper")
	n, err := Object[named](m, h.Raw)
	h.Nested = n
	return err
}

func (h *hooked) MappingHooks() []Hook {
	return []Hook{
		func(*Mapper) error {
			h.calls = append(h.calls, "first")
			return nil
		},
		func(*Mapper) error {
			h.calls = append(h.calls, "second")
			if h.Fail {
				return fmt.Errorf("hook failed")
			}
			return nil
		},
	}
}
