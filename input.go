package dispatch

import "slices"

// Parameter locations.
const (
	InQuery  = "query"
	InHeader = "header"
	InBody   = "body"
)

// Input describes one request parameter for the generated documentation.
// Values lists the allowed values; empty means unconstrained.
type Input struct {
	Name        string
	Description string
	Required    bool
	In          string
	Type        string
	Values      []string
	Visibility  Visibility
}

// InputOption configures an Input.
type InputOption func(*Input)

// WithInputDescription sets the parameter description.
func WithInputDescription(desc string) InputOption {
	return func(in *Input) {
		in.Description = desc
	}
}

// WithInputRequired marks the parameter as required.
func WithInputRequired() InputOption {
	return func(in *Input) {
		in.Required = true
	}
}

// WithInputIn sets the parameter location.
func WithInputIn(location string) InputOption {
	return func(in *Input) {
		in.In = location
	}
}

// WithInputType sets the parameter data type.
func WithInputType(dataType string) InputOption {
	return func(in *Input) {
		in.Type = dataType
	}
}

// WithInputValues sets the allowed values.
func WithInputValues(values ...string) InputOption {
	return func(in *Input) {
		in.Values = slices.Clone(values)
	}
}

// WithInputHidden keeps the parameter out of the documentation.
func WithInputHidden() InputOption {
	return func(in *Input) {
		in.Visibility = Hide
	}
}

// NewInput returns an optional string query parameter named name.
func NewInput(name string, opts ...InputOption) Input {
	in := Input{
		Name:       name,
		In:         InQuery,
		Type:       "string",
		Visibility: Show,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// RequiredInput returns a required query parameter.
func RequiredInput(name, desc string, values ...string) Input {
	return NewInput(name,
		WithInputDescription(desc),
		WithInputValues(values...),
		WithInputRequired(),
	)
}

// HeaderInput returns an optional header parameter.
func HeaderInput(name, desc string, values ...string) Input {
	return NewInput(name,
		WithInputDescription(desc),
		WithInputValues(values...),
		WithInputIn(InHeader),
	)
}

// clone returns a deep copy of in.
func (in Input) clone() Input {
	in.Values = slices.Clone(in.Values)
	return in
}
