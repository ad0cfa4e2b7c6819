package odds

import "github.com/ellavondegurechaff/packforge/packforge/database/models"

// DefaultRates are installed by SeedDefaults for pack types without a table.
var DefaultRates = map[string][]Rate{
	models.PackTypePokeball: {
		{models.TierD, 70}, {models.TierC, 20}, {models.TierB, 8}, {models.TierA, 2},
	},
	models.PackTypeGreatball: {
		{models.TierD, 55}, {models.TierC, 25}, {models.TierB, 12}, {models.TierA, 6}, {models.TierS, 2},
	},
	models.PackTypeUltraball: {
		{models.TierD, 40}, {models.TierC, 28}, {models.TierB, 18}, {models.TierA, 9}, {models.TierS, 4}, {models.TierSS, 1},
	},
	models.PackTypeMasterball: {
		{models.TierC, 35}, {models.TierB, 30}, {models.TierA, 20}, {models.TierS, 10}, {models.TierSS, 4}, {models.TierSSS, 1},
	},
}
