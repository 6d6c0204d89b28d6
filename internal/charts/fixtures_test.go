package charts

import (
	"testing"

	"covidviz/internal/logger"
	"covidviz/internal/metrics"
	"covidviz/internal/models"
	"covidviz/internal/render"
)

const owidCSV = `iso_code,date,total_cases,total_deaths_per_million,new_vaccinations_smoothed_per_million
USA,2023-03-06,100,10,5
USA,2023-03-07,200,12,
GBR,2023-03-06,50,8,3
GBR,2023-03-07,80,9,4
XYZ,2023-03-07,999,1,1
FRA,2023-03-07,n/a,2,2
`

const centroidCSV = `iso_code,long,lat
USA,-98,39
GBR,-2,54
FRA,2,46
`

const worldJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","id":"USA","properties":{},"geometry":{"type":"Polygon","coordinates":[[[-120,30],[-70,30],[-70,48],[-120,48],[-120,30]]]}},
{"type":"Feature","id":"GBR","properties":{},"geometry":{"type":"Polygon","coordinates":[[[-6,50],[2,50],[2,58],[-6,58],[-6,50]]]}},
{"type":"Feature","id":"ATA","properties":{},"geometry":{"type":"Polygon","coordinates":[[[-180,-85],[180,-85],[180,-65],[-180,-65],[-180,-85]]]}}
]}`

func testStore(t *testing.T) *models.Store {
	t.Helper()
	owid, err := models.ParseCSV([]byte(owidCSV))
	if err != nil {
		t.Fatalf("owid: %v", err)
	}
	centroids, err := models.ParseCSV([]byte(centroidCSV))
	if err != nil {
		t.Fatalf("centroids: %v", err)
	}
	world, err := models.ParseWorld([]byte(worldJSON))
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return models.NewStore(owid, world, centroids)
}

func testEnv() (Env, *metrics.Recorder) {
	rec := metrics.New()
	return Env{
		Surface: render.NewSurface("#line-chart-container", "#bubble-map-container"),
		Logger:  logger.Discard(),
		Metrics: rec,
	}, rec
}

func rowsOf(t *testing.T, csv string) models.Rows {
	t.Helper()
	rows, err := models.ParseCSV([]byte(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return rows
}

func attr(t *testing.T, n *render.Node, key string) string {
	t.Helper()
	v, ok := n.Attr(key)
	if !ok {
		t.Fatalf("%s has no %q attribute", n.Name(), key)
	}
	return v
}
