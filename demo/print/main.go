package main

import (
	"fmt"
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	geoarrow "github.com/tingold/orb-geoarrow"
)

type City struct {
	Name       string
	Country    string
	Longitude  float64
	Latitude   float64
	Population int
}

var cities = []City{
	{"Tokyo", "Japan", 139.6917, 35.6895, 13960000},
	{"New York", "United States", -73.9857, 40.7484, 8336817},
	{"London", "United Kingdom", -0.1276, 51.5074, 8982000},
	{"Paris", "France", 2.3522, 48.8566, 2161000},
	{"Beijing", "China", 116.4074, 39.9042, 21540000},
	{"São Paulo", "Brazil", -46.6333, -23.5505, 12300000},
	{"Mumbai", "India", 72.8777, 19.0760, 12400000},
	{"Cairo", "Egypt", 31.2357, 30.0444, 10230000},
	{"Sydney", "Australia", 151.2093, -33.8688, 5312000},
	{"Berlin", "Germany", 13.4050, 52.5200, 3669491},
}

func main() {
	// Marshal the cities to WKB, as a query layer would hand them over.
	blobs := make([][]byte, len(cities))
	names := make([]any, len(cities))
	pops := make([]any, len(cities))
	for i, city := range cities {
		data, err := wkb.Marshal(orb.Point{city.Longitude, city.Latitude})
		if err != nil {
			log.Fatalf("marshal %s: %v", city.Name, err)
		}
		blobs[i] = data
		names[i] = city.Name
		pops[i] = float64(city.Population)
	}

	attrs := map[string]geoarrow.Attribute{
		"name":       {Values: names, Type: "VARCHAR"},
		"population": {Values: pops, Type: "DOUBLE"},
	}

	results, err := geoarrow.Encode(blobs, attrs, nil)
	if err != nil {
		log.Fatalf("encode: %v", err)
	}

	for _, res := range results {
		fmt.Printf("group %s: %d rows, bounds [%.4f %.4f %.4f %.4f]\n",
			res.GeometryType, res.Record.NumRows(),
			res.Bounds[0], res.Bounds[1], res.Bounds[2], res.Bounds[3])
		for i, field := range res.Record.Schema().Fields() {
			fmt.Printf("  %s: %s\n", field.Name, res.Record.Column(i))
		}
		res.Record.Release()
	}
}
