package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture datasets describing a tiny, fully known world:
//
//   - Camden (E09000007) has two LSOAs, one of which holds both stations
//   - Hackney (E09000012) has one LSOA and no stations
//   - Luton (E06000032) is outside London
//   - Islington appears in the obesity data but not in the deprivation data
const (
	StationsCSV = `id,commonName,placeType,lat,lon
BikePoints_1,"River Street , Clerkenwell",BikePoint,51.529163,-0.10997
BikePoints_2,"Phillimore Gardens, Kensington",BikePoint,51.499606,-0.197574
`

	AreaCountsCSV = `lsoa,count
E01000001,2
`

	DeprivationCSV = "\ufeff" + `LSOA code (2011),LSOA name (2011),Local Authority District code (2019),Local Authority District name (2019),Index of Multiple Deprivation (IMD) Rank,Index of Multiple Deprivation (IMD) Decile
E01000001,Camden 001A,E09000007,Camden,"1,234",2
E01000002,Camden 001B,E09000007,Camden,"2,000",3
E01000003,Hackney 001A,E09000012,Hackney,500,1
E01000004,Luton 001A,E06000032,Luton,"10,000",6
`

	ChildObesityCSV = `Indicator ID,Indicator Name,Area Code,Area Name,Area Type,Sex,Time period,Value
20601,Reception prevalence of overweight (including obesity),E09000007,Camden,Districts & UAs (from Apr 2023),Persons,2022/23,20.5
20601,Reception prevalence of overweight (including obesity),E09000012,Hackney,Districts & UAs (from Apr 2023),Persons,2022/23,22.25
20601,Reception prevalence of overweight (including obesity),E09000019,Islington,Districts & UAs (from Apr 2023),Persons,2022/23,21
20601,Reception prevalence of overweight (including obesity),E06000032,Luton,Districts & UAs (from Apr 2023),Persons,2022/23,23
20601,Reception prevalence of overweight (including obesity),E09000007,Camden,Districts & UAs (from Apr 2023),Persons,2021/22,99
20601,Reception prevalence of overweight (including obesity),E92000001,England,England,Persons,2022/23,21.3
20602,Reception prevalence of obesity (including severe obesity),E09000012,Hackney,Districts & UAs (from Apr 2023),Persons,2022/23,11
20602,Reception prevalence of obesity (including severe obesity),E09000007,Camden,Districts & UAs (from Apr 2023),Persons,2022/23,9.5
20602,Reception prevalence of obesity (including severe obesity),E09000019,Islington,Districts & UAs (from Apr 2023),Persons,2022/23,10
20602,Reception prevalence of obesity (including severe obesity),E06000032,Luton,Districts & UAs (from Apr 2023),Persons,2022/23,12
20603,Year 6 prevalence of overweight (including obesity),E09000007,Camden,Districts & UAs (from Apr 2023),Persons,2022/23,38.5
20603,Year 6 prevalence of overweight (including obesity),E09000012,Hackney,Districts & UAs (from Apr 2023),Persons,2022/23,42.5
20603,Year 6 prevalence of overweight (including obesity),E09000019,Islington,Districts & UAs (from Apr 2023),Persons,2022/23,40
20603,Year 6 prevalence of overweight (including obesity),E06000032,Luton,Districts & UAs (from Apr 2023),Persons,2022/23,41
20604,Year 6 prevalence of obesity (including severe obesity),E09000007,Camden,Districts & UAs (from Apr 2023),Persons,2022/23,22.5
20604,Year 6 prevalence of obesity (including severe obesity),E09000012,Hackney,Districts & UAs (from Apr 2023),Persons,2022/23,
20604,Year 6 prevalence of obesity (including severe obesity),E09000019,Islington,Districts & UAs (from Apr 2023),Persons,2022/23,24
20604,Year 6 prevalence of obesity (including severe obesity),E06000032,Luton,Districts & UAs (from Apr 2023),Persons,2022/23,25
`

	AdultObesityCSV = `Indicator ID,Indicator Name,Area Code,Area Name,Area Type,Sex,Time period,Value
93088,Percentage of adults (aged 18 plus) classified as overweight or obese,E09000007,Camden,Districts & UAs (2020/21),Persons,2021/22,50.5
93088,Percentage of adults (aged 18 plus) classified as overweight or obese,E09000012,Hackney,Districts & UAs (2020/21),Persons,2021/22,60.5
93088,Percentage of adults (aged 18 plus) classified as overweight or obese,E09000019,Islington,Districts & UAs (2020/21),Persons,2021/22,55
93088,Percentage of adults (aged 18 plus) classified as overweight or obese,E09000007,Camden,Districts & UAs (2020/21),Persons,2015/16,52
93088,Percentage of adults (aged 18 plus) classified as overweight or obese,E09000012,Hackney,Districts & UAs (2020/21),Persons,2015/16,59
93088,Percentage of adults (aged 18 plus) classified as overweight or obese,E09000019,Islington,Districts & UAs (2020/21),Persons,2015/16,54
93088,Percentage of adults (aged 18 plus) classified as overweight or obese,E09000007,Camden,Counties & UAs (2021/22-2022/23),Persons,2021/22,99
93881,Percentage of adults (aged 18 plus) classified as obese,E09000007,Camden,Districts & UAs (2020/21),Persons,2021/22,17.25
93881,Percentage of adults (aged 18 plus) classified as obese,E09000012,Hackney,Districts & UAs (2020/21),Persons,2021/22,25.5
93881,Percentage of adults (aged 18 plus) classified as obese,E09000019,Islington,Districts & UAs (2020/21),Persons,2021/22,20
93881,Percentage of adults (aged 18 plus) classified as obese,E09000007,Camden,Districts & UAs (2020/21),Persons,2015/16,16
93881,Percentage of adults (aged 18 plus) classified as obese,E09000012,Hackney,Districts & UAs (2020/21),Persons,2015/16,26
93881,Percentage of adults (aged 18 plus) classified as obese,E09000019,Islington,Districts & UAs (2020/21),Persons,2015/16,19
`

	// ModelDataCSV is the combined table the fixtures above produce
	ModelDataCSV = `la_code,la_name,rank,decile,london,bikepoint,bikepoint_binary,5_yearolds_overweight,5_yearolds_obese,11_yearolds_overweight,11_yearolds_obese,adults_overweight,adults_obese,historic_adults_overweight,historic_adults_obese,overweight_change,obese_change
E09000007,Camden,1617,2.5,true,0.5,true,20.5,9.5,38.5,22.5,50.5,17.25,52,16,-1.5,1.25
E09000012,Hackney,500,1,true,0,false,22.25,11,42.5,,60.5,25.5,59,26,1.5,-0.5
`
)

// Fixture file names, matching the configuration defaults
const (
	StationsFile     = "bikepoints.csv"
	AreaCountsFile   = "la_counts.csv"
	DeprivationFile  = "deprivation.csv"
	ChildObesityFile = "children_obesity.csv"
	AdultObesityFile = "adults_obesity.csv"
	ModelDataFile    = "model_data.csv"
)

// WriteFile writes content to dir/name and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// WriteCleanerInputs writes the five cleaner inputs into a fresh temp
// directory and returns it
func WriteCleanerInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, StationsFile, StationsCSV)
	WriteFile(t, dir, AreaCountsFile, AreaCountsCSV)
	WriteFile(t, dir, DeprivationFile, DeprivationCSV)
	WriteFile(t, dir, ChildObesityFile, ChildObesityCSV)
	WriteFile(t, dir, AdultObesityFile, AdultObesityCSV)
	return dir
}

// WriteReportInputs writes model_data.csv and bikepoints.csv into a fresh
// temp directory and returns it
func WriteReportInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, StationsFile, StationsCSV)
	WriteFile(t, dir, ModelDataFile, ModelDataCSV)
	return dir
}
