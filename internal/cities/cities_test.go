package cities

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestLoadBareList(t *testing.T) {
	p := writeFile(t, "cities.csv", "City,Country\nParis,France\nLagos,Nigeria\n")
	list, err := Load(p)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Paris", list[0].City)
	assert.Equal(t, "Nigeria", list[1].Country)
	assert.Empty(t, list[0].WikidataEntityID)
	assert.Nil(t, list[0].AverageTemperature)
}

func TestLoadPrefilled(t *testing.T) {
	p := writeFile(t, "cities.csv",
		"City,Country,WikidataEntityID,WikidataLongitude,WikidataLatitude,AverageTemperature\n"+
			"Paris,France,Q90,2.3514,48.8575,\n")
	list, err := Load(p)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Q90", list[0].WikidataEntityID)
	require.NotNil(t, list[0].WikidataLatitude)
	assert.InDelta(t, 48.8575, *list[0].WikidataLatitude, 1e-9)
	assert.Nil(t, list[0].AverageTemperature)
}

func TestLoadRejectsUnknownHeader(t *testing.T) {
	p := writeFile(t, "cities.csv", "Town,Nation\nParis,France\n")
	_, err := Load(p)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	lon, lat, mean := 3.3792, 6.5244, 26.5
	list := []City{
		{City: "Lagos", Country: "Nigeria", WikidataEntityID: "Q8673",
			WikidataLongitude: &lon, WikidataLatitude: &lat, AverageTemperature: &mean},
		{City: "Atlantis", Country: "None"},
	}
	p := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Save(p, list))

	got, err := Load(p)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, list[0].WikidataEntityID, got[0].WikidataEntityID)
	require.NotNil(t, got[0].AverageTemperature)
	assert.InDelta(t, mean, *got[0].AverageTemperature, 1e-9)
	// The unresolved row keeps empty columns, not zeros.
	assert.Nil(t, got[1].WikidataLongitude)
	assert.Nil(t, got[1].AverageTemperature)
}
