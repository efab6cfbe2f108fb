package transform

// Pipeline owns an ordered list of Transformers. Fit fits each transformer in
// order on its then-current data; FitTransform fits-and-transforms in a single
// pass so each subsequent transformer sees the upstream output. Mutation (Add)
// is forbidden once the pipeline is fitted.
type Pipeline struct {
	transformers []Transformer
	fitted       bool
}

// NewPipeline builds an empty, unfitted pipeline.
func NewPipeline(transformers ...Transformer) *Pipeline {
	return &Pipeline{transformers: append([]Transformer(nil), transformers...)}
}

// Add appends a transformer. Fails with ErrAlreadyFitted once Fit/FitTransform
// has run.
func (p *Pipeline) Add(t Transformer) error {
	if p.fitted {
		return ErrAlreadyFitted
	}
	p.transformers = append(p.transformers, t)
	return nil
}

// Fit fits each transformer in order on a private copy of data, without
// mutating the caller's slice and without returning the transformed output.
func (p *Pipeline) Fit(data []float64) error {
	working := append([]float64(nil), data...)
	for _, t := range p.transformers {
		if err := t.Fit(working); err != nil {
			return err
		}
		if err := t.Transform(working); err != nil {
			return err
		}
	}
	p.fitted = true
	return nil
}

// FitTransform fits and transforms data in place, in a single pass.
func (p *Pipeline) FitTransform(data []float64) error {
	for _, t := range p.transformers {
		if err := t.Fit(data); err != nil {
			return err
		}
		if err := t.Transform(data); err != nil {
			return err
		}
	}
	p.fitted = true
	return nil
}

// Transform applies every forward map in order. Fails with ErrNotFitted if
// called before Fit/FitTransform.
func (p *Pipeline) Transform(data []float64) error {
	if !p.fitted {
		return ErrNotFitted
	}
	for _, t := range p.transformers {
		if err := t.Transform(data); err != nil {
			return err
		}
	}
	return nil
}

// InverseTransform applies every inverse map in reverse order. Fails with
// ErrNotFitted if called before Fit/FitTransform.
func (p *Pipeline) InverseTransform(data []float64) error {
	if !p.fitted {
		return ErrNotFitted
	}
	for i := len(p.transformers) - 1; i >= 0; i-- {
		if err := p.transformers[i].InverseTransform(data); err != nil {
			return err
		}
	}
	return nil
}

// Fitted reports whether the pipeline has completed Fit or FitTransform.
func (p *Pipeline) Fitted() bool { return p.fitted }

// Len returns the number of transformers in the pipeline.
func (p *Pipeline) Len() int { return len(p.transformers) }
