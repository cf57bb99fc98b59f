package dataprocessing

// Canonical column names used after renaming
const (
	colLSOA          = "lsoa"
	colCount         = "count"
	colLACode        = "la_code"
	colLAName        = "la_name"
	colRank          = "rank"
	colDecile        = "decile"
	colIndicatorID   = "indicator_id"
	colIndicatorName = "indicator_name"
	colAreaType      = "area_type"
	colPeriod        = "period"
	colValue         = "value"
)

// deprivationColumns maps the published IMD headers onto canonical names.
// Both the CSV export and the xlsx "File 1" headers are accepted.
var deprivationColumns = map[string]string{
	"LSOA code (2011)":                                                                   colLSOA,
	"Local Authority District code (2019)":                                               colLACode,
	"Local Authority District name (2019)":                                               colLAName,
	"Index of Multiple Deprivation (IMD) Rank":                                           colRank,
	"Index of Multiple Deprivation (IMD) Decile":                                         colDecile,
	"Index of Multiple Deprivation (IMD) Rank (where 1 is most deprived)":                colRank,
	"Index of Multiple Deprivation (IMD) Decile (where 1 is most deprived 10% of LSOAs)": colDecile,
}

// deprivationSheetColumn selects the right sheet of an IMD workbook
const deprivationSheetColumn = "LSOA code (2011)"

// indicatorColumns maps the public health indicator export headers, shared
// by the childhood and adult obesity files.
var indicatorColumns = map[string]string{
	"Indicator ID":   colIndicatorID,
	"Indicator Name": colIndicatorName,
	"Area Code":      colLACode,
	"Area Name":      colLAName,
	"Area Type":      colAreaType,
	"Time period":    colPeriod,
	"Value":          colValue,
}

// indicatorSheetColumn selects the data sheet of an indicator workbook
const indicatorSheetColumn = "Indicator ID"
