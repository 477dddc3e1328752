package regulation

import (
	"time"

	"github.com/google/uuid"

	"github.com/City-of-Helsinki/hitas-calc/pkg/constants"
	"github.com/City-of-Helsinki/hitas-calc/pkg/hitas"
)

// obfuscatableOwners selects the owners whose identifying data must be
// cleared after this run's releases: owners who no longer hold any apartment
// under active regulation across all housing companies. Owners who still hold
// a half-Hitas apartment sold less than two years before the calculation
// month keep their data for the grace period.
func obfuscatableOwners(owners []hitas.Owner, released map[uuid.UUID]bool, calculationMonth time.Time) []hitas.Owner {
	graceCutoff := calculationMonth.AddDate(-constants.ObfuscationGraceYears, 0, 0)

	var obfuscatable []hitas.Owner
	for _, owner := range owners {
		holdsRegulated := false
		inGracePeriod := false
		for _, ownership := range owner.Ownerships {
			regulated := ownership.Regulated && !released[ownership.HousingCompanyID]
			if regulated {
				holdsRegulated = true
				break
			}
			if ownership.HalfHitas && ownership.LatestSaleDate != nil && ownership.LatestSaleDate.After(graceCutoff) {
				inGracePeriod = true
			}
		}
		if holdsRegulated || inGracePeriod {
			continue
		}
		obfuscatable = append(obfuscatable, owner)
	}
	return obfuscatable
}
