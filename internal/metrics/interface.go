package metrics

// Metrics defines the interface for collecting match engine metrics.
// This decouples the services from the Prometheus implementation.
type Metrics interface {
	IncMatchesCreated()
	IncJoins()
	IncLeaves()
	IncTeamsFormed()
	IncGoalkeeperRotations()
	ObserveBalanceDuration(seconds float64)
}

// Noop discards every observation. Used by tests and tools that don't export metrics.
type Noop struct{}

var _ Metrics = Noop{}

func (Noop) IncMatchesCreated()             {}
func (Noop) IncJoins()                      {}
func (Noop) IncLeaves()                     {}
func (Noop) IncTeamsFormed()                {}
func (Noop) IncGoalkeeperRotations()        {}
func (Noop) ObserveBalanceDuration(float64) {}
