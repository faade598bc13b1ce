package model

// Capabilities is the explicit permission set of a caller.
type Capabilities struct {
	CanEvaluate         bool
	CanOverrideDecision bool
	CanRecalculate      bool
	CanViewDecisions    bool
	CanViewConfig       bool
	CanManagePolicy     bool
}

// Actor identifies who triggered an operation.
type Actor struct {
	ID           string
	Capabilities Capabilities
}

// SystemCaller is used by batch jobs and the offline CLI.
func SystemCaller() Actor {
	return Actor{
		ID: SystemActor,
		Capabilities: Capabilities{
			CanEvaluate:         true,
			CanOverrideDecision: true,
			CanRecalculate:      true,
			CanViewDecisions:    true,
			CanViewConfig:       true,
			CanManagePolicy:     true,
		},
	}
}
