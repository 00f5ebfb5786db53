// Package herr names the error taxonomy call sites need to distinguish:
// a Parse failure drops the item silently, a Fetch failure drops the
// source, a Probe failure excludes the URI for the cycle, and so on.
// Each category is a sentinel that Wrap attaches to an underlying error
// so errors.Is(err, herr.Parse) succeeds at any call site up the stack.
package herr

import "errors"

var (
	Parse       = errors.New("parse")
	Fetch       = errors.New("fetch")
	Probe       = errors.New("probe")
	EngineStart = errors.New("engine start")
	Persist     = errors.New("persist")
	Validate    = errors.New("validate")
)

// Wrap tags err with category so errors.Is(err, category) succeeds at
// any call site up the stack.
func Wrap(category error, err error) error {
	if err == nil {
		return nil
	}
	return &categorized{category: category, err: err}
}

type categorized struct {
	category error
	err      error
}

func (c *categorized) Error() string { return c.category.Error() + ": " + c.err.Error() }
func (c *categorized) Unwrap() error { return c.err }
func (c *categorized) Is(target error) bool {
	return target == c.category
}
