package catalog

import (
	"github.com/KaramelBytes/trendloom-cli/internal/choropleth"
	"github.com/KaramelBytes/trendloom-cli/internal/series"
)

// Data file names as published by their upstream providers.
const (
	EntitiesFile = "countryNameToCode.json"

	fileTemperature = "monthly-temperature-anomalies.csv"
	fileWheat       = "wheat-yield.csv"
	fileGDPGrowth   = "API_NY.GDP.MKTP.KD.ZG_DS2_en_csv_v2_85160.csv"
	fileGDPLevels   = "API_NY.GDP.MKTP.KD_DS2_en_csv_v2.csv"
	fileGDPDollar   = "GDP_Dollar.csv"
	fileFoodCPI     = "API_FP.CPI.TOTL.ZG_DS2_en_csv_v2_85166.csv"
	fileDamages     = "economic-damages-from-natural-disasters-as-a-share-of-gdp.csv"

	// World Bank indicator exports carry four metadata lines before the header.
	worldBankSkip = 4
	seaLevelSkip  = 6
)

func worldBank(file string) Source {
	return Source{
		File:         file,
		SkipLines:    worldBankSkip,
		Strategy:     series.StrategyWide,
		EntityColumn: "Country Code",
		Entity:       series.KeyCode,
	}
}

// Default returns the built-in catalog covering the country, global and world views.
func Default() *Catalog {
	temperature := Source{
		File:         fileTemperature,
		Strategy:     series.StrategyLong,
		YearColumn:   "Day",
		ValueColumn:  "Temperature anomaly",
		EntityColumn: "Code",
		Entity:       series.KeyCode,
		Aggregate:    choropleth.AggregateMean,
	}
	wheat := Source{
		File:         fileWheat,
		Strategy:     series.StrategyLong,
		YearColumn:   "Year",
		ValueColumn:  "wheat-yield",
		EntityColumn: "Entity",
		Entity:       series.KeyName,
	}
	damages := Source{
		File:        fileDamages,
		Strategy:    series.StrategyLong,
		ValueColumn: "disaster-damage",
		Entity:      series.KeyCode,
	}
	gdpLevels := worldBank(fileGDPLevels)
	gdpLevels.Transform = TransformYoY

	country := &View{
		Name:           "country",
		Description:    "Per-country comparison of climate and economic indicators",
		Years:          series.YearRange{From: 2000, To: 2022},
		EntityRequired: true,
		Defaults:       Defaults{X: "temperature", Y: "gdp"},
		Variables: []Variable{
			{ID: "temperature", Label: "Temperature Anomaly", Unit: "°C", Source: temperature},
			{ID: "wheat", Label: "Wheat Yield", Unit: "tons/hectare", Source: wheat},
			{ID: "gdp", Label: "GDP Growth", Unit: "%", Source: gdpLevels},
			{ID: "food", Label: "Consumer Price Inflation", Unit: "%", Source: worldBank(fileFoodCPI)},
			{ID: "disaster", Label: "Total Disaster Damage", Unit: "% GDP", Source: damages},
		},
	}

	global := &View{
		Name:        "global",
		Description: "Long-run global indicators",
		Years:       series.YearRange{From: 1960},
		Defaults:    Defaults{X: "temperature", Y: "gdp"},
		Variables: []Variable{
			{ID: "temperature", Label: "Temperature Rise", Unit: "°C", Source: Source{
				File: "global/" + fileTemperature, Strategy: series.StrategyLong,
				YearColumn: "Day", ValueColumn: "Temperature anomaly",
			}},
			{ID: "sea_level", Label: "Sea Level Rise", Unit: "inches", Source: Source{
				File: "global/sea-level_fig-1.csv", SkipLines: seaLevelSkip, Strategy: series.StrategyLong,
				YearColumn: "Year", ValueColumn: "CSIRO - Adjusted sea level (inches)",
			}},
			{ID: "disasters", Label: "Natural Disasters", Unit: "events/year", Source: Source{
				File: "global/number-of-natural-disaster-events.csv", Strategy: series.StrategyLong,
				YearColumn: "Year", ValueColumn: "Disasters",
			}},
			{ID: "gdp", Label: "Global GDP Change", Unit: "%", Source: Source{
				File: "global/global-gdp-over-the-long-run.csv", Strategy: series.StrategyLong,
				YearColumn: "Year", ValueColumn: "GDP", Transform: TransformYoY,
			}},
			{ID: "food", Label: "Food Price Index", Source: Source{
				File: "global/PFOODINDEXM.csv", Strategy: series.StrategyLong,
				YearColumn: "observation_date", ValueColumn: "PFOODINDEXM",
			}},
			{ID: "wheat", Label: "Wheat Yield", Unit: "tons/hectare", Source: Source{
				File: "global/" + fileWheat, Strategy: series.StrategyLong,
				YearColumn: "Year", ValueColumn: "wheat-yield",
			}},
		},
	}

	gdpUSD := worldBank(fileGDPDollar)
	world := &View{
		Name:        "world",
		Description: "Choropleth map of per-country values by year",
		Years:       series.YearRange{From: 2000, To: 2022},
		Defaults:    Defaults{X: "gdp"},
		Variables: []Variable{
			{ID: "gdp", Label: "GDP Growth", Unit: "%", Source: worldBank(fileGDPGrowth)},
			{ID: "wheat", Label: "Wheat Yield", Unit: "tons/hectare", Source: wheat},
			{ID: "temperature", Label: "Temperature Anomaly", Unit: "°C", Source: temperature},
			{ID: "food_inflation", Label: "Food Inflation", Unit: "%", Source: worldBank(fileFoodCPI)},
			{ID: "disaster_damage", Label: "Disaster Damage", Unit: "% GDP", Source: damages},
			{ID: "gdp_usd", Label: "GDP", Unit: "USD", Auxiliary: true, Source: gdpUSD},
		},
	}

	return &Catalog{
		Entities: EntitiesFile,
		Views:    map[string]*View{country.Name: country, global.Name: global, world.Name: world},
	}
}
