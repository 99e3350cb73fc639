package track

// Service is the provenance core: it coordinates the store, the derived-state
// projections, and the connect/disconnect/dispose state machine that the CLI
// drives. All derived state (status, lifecycles, timelines) is recomputed
// from source records on every call; nothing is cached.
type Service struct {
	database Database
	logger   Logger
	clock    Clock
}

// NewService creates a new Service with the provided dependencies.
func NewService(database Database, logger Logger, clock Clock) *Service {
	return &Service{
		database: database,
		logger:   logger,
		clock:    clock,
	}
}
