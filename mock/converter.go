package mock

import "github.com/fwojciec/bibfetch"

var _ bibfetch.Converter = (*Converter)(nil)

// Converter is a mock implementation of bibfetch.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
