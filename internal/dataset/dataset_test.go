package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/shared/testutil"
)

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testutil.DeprivationCSV), "deprivation.csv")
	require.NoError(t, err)

	assert.Equal(t, "LSOA code (2011)", tbl.Header[0], "byte order mark is stripped")
	assert.Equal(t, 4, tbl.Len())

	var ranks []string
	require.NoError(t, tbl.Each(func(r Row) error {
		ranks = append(ranks, r.Get("Index of Multiple Deprivation (IMD) Rank"))
		return nil
	}))
	assert.Equal(t, []string{"1,234", "2,000", "500", "10,000"}, ranks)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		errType apierrors.ErrorType
	}{
		{name: "empty", input: "", errType: apierrors.ErrTypeParsing},
		{name: "ragged row", input: "a,b\n1,2,3\n", errType: apierrors.ErrTypeParsing},
		{name: "bad quoting", input: "a,b\n\"1,2\n", errType: apierrors.ErrTypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), "x.csv")
			require.Error(t, err)
			assert.True(t, apierrors.IsType(err, tt.errType))
		})
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))
}

func TestTable_RenameRequireFilter(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(testutil.ChildObesityCSV), "children.csv")
	require.NoError(t, err)

	tbl.Rename(map[string]string{"Area Code": "la_code", "Area Name": "la_name", "Not There": "x"})
	require.NoError(t, tbl.Require("la_code", "la_name", "Value"))

	err = tbl.Require("la_code", "Sex2", "Region")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Region, Sex2")

	recent := tbl.Filter(Equals("Time period", "2022/23"))
	districts := recent.Filter(Equals("Area Type", "Districts & UAs (from Apr 2023)"))
	assert.Equal(t, 17, recent.Len())
	assert.Equal(t, 16, districts.Len())
	assert.Equal(t, 18, tbl.Len(), "filter does not modify the source")
}

func TestReadXLSX_PicksSheetByColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deprivation.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Notes"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"File 1: index of multiple deprivation"}))
	_, err := f.NewSheet("IMD2019")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("IMD2019", "A1", &[]interface{}{"LSOA code (2011)", "Index of Multiple Deprivation (IMD) Rank", "Index of Multiple Deprivation (IMD) Decile"}))
	require.NoError(t, f.SetSheetRow("IMD2019", "A2", &[]interface{}{"E01000001", "1,234", 2}))
	require.NoError(t, f.SetSheetRow("IMD2019", "A3", &[]interface{}{"E01000002"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := ReadFile(path, "LSOA code (2011)", "Index of Multiple Deprivation (IMD) Rank")
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	var decile []string
	_ = tbl.Each(func(r Row) error {
		decile = append(decile, r.Get("Index of Multiple Deprivation (IMD) Decile"))
		return nil
	})
	assert.Equal(t, []string{"2", ""}, decile, "short rows are padded")

	_, err = ReadXLSX(path, "Missing column")
	assert.Error(t, err)
}

func TestParseThousands(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1,234", want: 1234},
		{in: "32,844", want: 32844},
		{in: " 500 ", want: 500},
		{in: "1,000,000", want: 1000000},
		{in: "", wantErr: true},
		{in: "12a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseThousands(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptionalFloat(t *testing.T) {
	v, err := ParseOptionalFloat("22.25")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 22.25, *v)

	v, err = ParseOptionalFloat("  ")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseOptionalFloat("n/a")
	assert.Error(t, err)
}
