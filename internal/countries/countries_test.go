package countries

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTableResolves(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)
	require.Greater(t, r.Len(), 200)

	tests := []struct {
		name, code string
		want       string
		ok         bool
	}{
		{"United States", "USA", "USA", true},
		{"whatever", "usa", "USA", true},
		{"Korea, Rep.", "", "KOR", true},
		{"  korea   rep ", "", "KOR", true},
		{"Egypt, Arab Rep.", "", "EGY", true},
		{"Cote d'Ivoire", "", "CIV", true},
		{"Côte d'Ivoire", "", "CIV", true},
		{"Bahamas, The", "", "BHS", true},
		{"Turkey", "", "TUR", true},
		{"Trinidad & Tobago", "", "TTO", true},
		{"DEU", "", "DEU", true},
		{"World", "WLD", "", false},
		{"Euro area", "EMU", "", false},
		{"High income", "HIC", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.code, func(t *testing.T) {
			got, ok := r.Resolve(tt.name, tt.code)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsAmbiguousNames(t *testing.T) {
	_, err := Parse([]byte(`
countries:
  - {code: AAA, name: Foo}
  - {code: BBB, name: Bar, aliases: ["foo"]}
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "maps to both")
}

func TestParseRejectsBadCodes(t *testing.T) {
	_, err := Parse([]byte(`countries: [{code: A1, name: Foo}]`))
	require.Error(t, err)

	_, err = Parse([]byte(`countries: [{code: AAA, name: Foo}, {code: aaa, name: Bar}]`))
	require.Error(t, err)

	_, err = Parse([]byte(`countries: []`))
	require.Error(t, err)
}

func TestLoadOverrideFile(t *testing.T) {
	path := t.TempDir() + "/countries.yaml"
	require.NoError(t, writeFile(path, "countries:\n  - {code: XAA, name: Country A, aliases: [A]}\n"))

	r, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())
	id, ok := r.Resolve("Country A", "")
	require.True(t, ok)
	require.Equal(t, "XAA", id)
	require.Equal(t, "Country A", r.Name("XAA"))
	require.Equal(t, []string{"XAA"}, r.Codes())
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "st kitts and nevis", NormalizeName("St. Kitts & Nevis"))
	require.Equal(t, "virgin islands u s", NormalizeName("Virgin Islands (U.S.)"))
}
