package weights

import (
	"github.com/okian/matchbox/internal/domain/attendee"
	"github.com/okian/matchbox/internal/domain/model"
	"github.com/okian/matchbox/internal/domain/signal"
)

// DefaultProfileID names the built-in profile used when a request does not
// name one.
const DefaultProfileID = "default"

// Persona archetypes with built-in weight vectors.
const (
	PersonaDeveloper       = "developer"
	PersonaPublisher       = "publisher"
	PersonaInvestor        = "investor"
	PersonaServiceProvider = "service_provider"
	PersonaSponsor         = "sponsor"
)

// personaWeights maps each persona to its default weight vector. These are
// tunable business rules, kept as data rather than branching logic.
var personaWeights = map[string]map[string]float64{
	PersonaDeveloper: {
		signal.NameBipartite:            1.0,
		signal.NamePlatformOverlap:      0.7,
		signal.NameCategoryOverlap:      0.5,
		signal.NameStageComplement:      0.6,
		signal.NameTextSimilarity:       0.3,
		attendee.NameRoleIntent:         0.8,
		attendee.NameScanRecency:        0.4,
		attendee.NameInterestCapability: 0.6,
	},
	PersonaPublisher: {
		signal.NameBipartite:       1.0,
		signal.NameMarketOverlap:   0.8,
		signal.NameCategoryOverlap: 0.6,
		signal.NameStageComplement: 0.5,
		signal.NameTextSimilarity:  0.3,
		attendee.NameRoleIntent:    0.7,
		attendee.NameScanRecency:   0.3,
	},
	PersonaInvestor: {
		signal.NameStageComplement: 1.0,
		signal.NameBipartite:       0.7,
		signal.NameMarketOverlap:   0.6,
		signal.NameDateProximity:   0.3,
		signal.NameTextSimilarity:  0.4,
		attendee.NameRoleIntent:    0.8,
	},
	PersonaServiceProvider: {
		signal.NameBipartite:       1.0,
		signal.NamePlatformOverlap: 0.5,
		signal.NameCategoryOverlap: 0.5,
		signal.NameTextSimilarity:  0.4,
		attendee.NameRoleIntent:    0.6,
		attendee.NameScanRecency:   0.5,
	},
	PersonaSponsor: {
		signal.NameMarketOverlap:   0.9,
		signal.NameCategoryOverlap: 0.8,
		signal.NameTextSimilarity:  0.5,
		attendee.NameLocationFit:   0.4,
		attendee.NameAvailability:  0.4,
		attendee.NameScanRecency:   0.3,
	},
}

// defaultWeights combines the generic signals into a balanced vector for
// requests that carry no profile at all.
var defaultWeights = map[string]float64{
	signal.NameBipartite:            1.0,
	signal.NameCategoryOverlap:      0.6,
	signal.NamePlatformOverlap:      0.6,
	signal.NameMarketOverlap:        0.6,
	signal.NameStageComplement:      0.5,
	signal.NameTextSimilarity:       0.4,
	signal.NameDateProximity:        0.2,
	attendee.NameRoleIntent:         0.7,
	attendee.NameScanRecency:        0.4,
	attendee.NameAvailability:       0.3,
	attendee.NameLocationFit:        0.3,
	attendee.NameBioSimilarity:      0.3,
	attendee.NameInterestCapability: 0.5,
}

func defaultNormalization() model.Normalization {
	return model.Normalization{Method: model.NormalizeExpZ, Temperature: 1.0}
}

// Personas lists the known persona identifiers in stable order.
func Personas() []string {
	return []string{
		PersonaDeveloper,
		PersonaPublisher,
		PersonaInvestor,
		PersonaServiceProvider,
		PersonaSponsor,
	}
}
