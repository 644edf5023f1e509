package dispatch

// Processor runs around every dispatched request. Preprocess runs before
// the action and Postprocess after it, both in registration order.
//
// A processor cannot skip the action or later processors. To stop a request
// it answers the exchange (SetError, SetBody or Answer) and downstream code
// is expected to check Exchange.Answered.
type Processor interface {
	Name() string
	Preprocess(ex *Exchange)
	Postprocess(ex *Exchange)
}

type processorFuncs struct {
	name string
	pre  func(*Exchange)
	post func(*Exchange)
}

// NewProcessor builds a Processor from two hooks. Either may be nil.
func NewProcessor(name string, pre, post func(*Exchange)) Processor {
	return &processorFuncs{name: name, pre: pre, post: post}
}

func (p *processorFuncs) Name() string { return p.name }

func (p *processorFuncs) Preprocess(ex *Exchange) {
	if p.pre != nil {
		p.pre(ex)
	}
}

func (p *processorFuncs) Postprocess(ex *Exchange) {
	if p.post != nil {
		p.post(ex)
	}
}
