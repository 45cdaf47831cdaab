package schema

import "fmt"

// ValidationError reports a single malformed record in a definition.
type ValidationError struct {
	Section string // top-level key, e.g. "sliders"
	Index   int    // record index within the section, -1 for the section itself
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Section, e.Reason)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Section, e.Index, e.Reason)
}

// AggregateError collects multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors flattens err into the individual validation failures
// it carries, or nil if err holds none.
func ValidationErrors(err error) []*ValidationError {
	switch e := err.(type) {
	case *ValidationError:
		return []*ValidationError{e}
	case *AggregateError:
		var out []*ValidationError
		for _, sub := range e.Errors {
			out = append(out, ValidationErrors(sub)...)
		}
		return out
	}
	return nil
}
