package driver

import (
	"gqlmerge/internal/attrib"
	"gqlmerge/internal/engine"
	"gqlmerge/internal/observ"
)

// MergeOptions содержит опции слияния схемы.
type MergeOptions struct {
	// Engine builds schemas; nil means the gqlparser engine.
	Engine engine.Engine
	// Jobs bounds concurrent file reads and attribution probes.
	Jobs     int
	Observer attrib.Observer
	// Timer records phase timings when non-nil.
	Timer *observ.Timer
	// BaseDir is used to render relative paths; empty means the working directory.
	BaseDir string
}

func (o MergeOptions) engine() engine.Engine {
	if o.Engine != nil {
		return o.Engine
	}
	return engine.NewGraphQL()
}

func (o MergeOptions) attribOptions() attrib.Options {
	return attrib.Options{Jobs: o.Jobs, Observer: o.Observer}
}
