package app

import "screenviz/domain/screen"

// VolcanoColors colors the static volcano plots
var VolcanoColors = map[screen.Label]string{
	screen.Enriched:       "#801a00",
	screen.Depleted:       "#002966",
	screen.NotSignificant: "#333333",
	screen.Control:        "#808080",
	screen.Amalgam:        "#cc7a00",
}

// DashboardColors colors the results dashboard
var DashboardColors = map[screen.Label]string{
	screen.Enriched:       "#801a00",
	screen.Depleted:       "#002966",
	screen.NotSignificant: "#808080",
	screen.Control:        "#b3b3b3",
	screen.Amalgam:        "#cc7a00",
}

// ComparisonColors colors the comparison plot
var ComparisonColors = map[screen.ComparisonLabel]string{
	screen.SignificantInBoth: "#003d99",
	screen.SignificantInA:    "#66194d",
	screen.SignificantInB:    "#006600",
	screen.SignificantInNone: "#808080",
}

const thresholdColor = "#000000"
