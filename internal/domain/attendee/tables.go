package attendee

import (
	"strings"

	"github.com/okian/matchbox/internal/domain/model"
)

// defaultRoleIntent is the low but non-zero score for unknown combinations.
const defaultRoleIntent = 0.2

// rolePairTable scores complementary professional role pairs among
// attendees. Tunable business data, symmetric by construction of the
// lookup helper.
var rolePairTable = map[string]map[string]float64{
	"developer": {
		"developer":        0.35,
		"publisher":        0.90,
		"investor":         0.80,
		"service_provider": 0.60,
		"press":            0.50,
		"recruiter":        0.45,
	},
	"publisher": {
		"publisher":        0.30,
		"investor":         0.55,
		"service_provider": 0.50,
		"press":            0.60,
		"recruiter":        0.35,
	},
	"investor": {
		"investor":         0.25,
		"service_provider": 0.40,
		"press":            0.45,
		"recruiter":        0.30,
	},
	"service_provider": {
		"service_provider": 0.30,
		"press":            0.40,
		"recruiter":        0.35,
	},
	"press": {
		"press":     0.25,
		"recruiter": 0.30,
	},
	"recruiter": {
		"recruiter": 0.25,
	},
}

// roleTypeTable scores an attendee role against a non-attendee
// counterparty type.
var roleTypeTable = map[string]map[model.ActorType]float64{
	"developer": {
		model.ActorCompany: 0.55,
		model.ActorSponsor: 0.70,
	},
	"publisher": {
		model.ActorCompany: 0.75,
		model.ActorSponsor: 0.50,
	},
	"investor": {
		model.ActorCompany: 0.85,
		model.ActorSponsor: 0.45,
	},
	"service_provider": {
		model.ActorCompany: 0.65,
		model.ActorSponsor: 0.55,
	},
	"press": {
		model.ActorCompany: 0.60,
		model.ActorSponsor: 0.60,
	},
	"recruiter": {
		model.ActorCompany: 0.70,
		model.ActorSponsor: 0.40,
	},
}

// rolePairIntent returns the best table score between role and any of the
// counterparty roles, checking both orientations of the pair table.
func rolePairIntent(role string, counterpartyRoles []string) float64 {
	best := 0.0
	for other := range model.NormalizeSet(counterpartyRoles) {
		v := 0.0
		if row, ok := rolePairTable[role]; ok {
			v = row[other]
		}
		if v == 0 {
			if row, ok := rolePairTable[other]; ok {
				v = row[role]
			}
		}
		if v > best {
			best = v
		}
	}
	return best
}

func roleTypeIntentScore(role string, t model.ActorType) float64 {
	if row, ok := roleTypeTable[role]; ok {
		return row[t]
	}
	return 0
}

// regionProximityTable gives partial location-fit credit for neighboring
// regions when the counterparty is not in the attendee's preferred set.
var regionProximityTable = map[string]map[string]float64{
	"north america": {
		"south america": 0.50,
		"europe":        0.40,
	},
	"south america": {
		"north america": 0.50,
		"europe":        0.30,
	},
	"europe": {
		"north america": 0.40,
		"middle east":   0.50,
		"africa":        0.40,
	},
	"middle east": {
		"europe": 0.50,
		"africa": 0.45,
		"asia":   0.45,
	},
	"africa": {
		"europe":      0.40,
		"middle east": 0.45,
	},
	"asia": {
		"middle east": 0.45,
		"oceania":     0.50,
	},
	"oceania": {
		"asia": 0.50,
	},
}

func regionProximity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if row, ok := regionProximityTable[a]; ok {
		if v, ok := row[b]; ok {
			return v
		}
	}
	if row, ok := regionProximityTable[b]; ok {
		if v, ok := row[a]; ok {
			return v
		}
	}
	return 0
}
