package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service holds the Prometheus collectors of the match engine
type Service struct {
	MatchesCreated      prometheus.Counter
	Joins               prometheus.Counter
	Leaves              prometheus.Counter
	TeamsFormed         prometheus.Counter
	GoalkeeperRotations prometheus.Counter
	BalanceDuration     prometheus.Histogram
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kickoff_matches_created_total",
			Help: "The total number of matches created.",
		}),
		Joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kickoff_match_joins_total",
			Help: "The total number of successful match joins.",
		}),
		Leaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kickoff_match_leaves_total",
			Help: "The total number of successful match leaves.",
		}),
		TeamsFormed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kickoff_teams_formed_total",
			Help: "The total number of team formations.",
		}),
		GoalkeeperRotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kickoff_goalkeeper_rotations_total",
			Help: "The total number of goalkeeper assignments made by rotation.",
		}),
		BalanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kickoff_balance_duration_seconds",
			Help:    "The duration of team balancing.",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),
	}

	reg.MustRegister(
		s.MatchesCreated,
		s.Joins,
		s.Leaves,
		s.TeamsFormed,
		s.GoalkeeperRotations,
		s.BalanceDuration,
	)

	return s
}

func (s *Service) IncMatchesCreated() {
	s.MatchesCreated.Inc()
}

func (s *Service) IncJoins() {
	s.Joins.Inc()
}

func (s *Service) IncLeaves() {
	s.Leaves.Inc()
}

func (s *Service) IncTeamsFormed() {
	s.TeamsFormed.Inc()
}

func (s *Service) IncGoalkeeperRotations() {
	s.GoalkeeperRotations.Inc()
}

func (s *Service) ObserveBalanceDuration(seconds float64) {
	s.BalanceDuration.Observe(seconds)
}
