// Command genmock writes a sample hourly observation feature collection with
// randomly dropped hours, for exercising gapfill and validate locally.
//
// Usage:
//
//	go run ./cmd/genmock -out data.json -start 2024-01-01T00:00:00Z -hours 48 -drop 0.2
package main

import (
	"errors"
	"flag"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/observation-gapfill/internal/adapter/file"
	"github.com/couchcryptid/observation-gapfill/internal/domain"
)

type options struct {
	start    time.Time
	hours    int
	drop     float64
	seed     uint64
	lat, lon float64
	station  string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data.json", "output path")
	start := flag.String("start", "2024-01-01T00:00:00Z", "first observation time")
	hours := flag.Int("hours", 48, "span of the series in hours")
	drop := flag.Float64("drop", 0.2, "probability of dropping an interior hour")
	seed := flag.Uint64("seed", 1, "random seed")
	lat := flag.Float64("lat", 30.2672, "station latitude")
	lon := flag.Float64("lon", -97.7431, "station longitude")
	station := flag.String("station", "KAUS", "station identifier")
	flag.Parse()

	startTime, err := domain.ParseTimestamp(*start)
	if err != nil {
		return err
	}

	doc, dropped, err := generate(options{
		start:   startTime,
		hours:   *hours,
		drop:    *drop,
		seed:    *seed,
		lat:     *lat,
		lon:     *lon,
		station: *station,
	})
	if err != nil {
		return err
	}
	if err := file.WriteDocument(*out, doc); err != nil {
		return err
	}

	log.Printf("%s: %d observations, %d hours dropped", *out, len(doc.Features), dropped)
	return nil
}

// generate builds a diurnal temperature curve over opts.hours+1 hourly slots.
// The first and last slots are always kept so the span is exact.
func generate(opts options) (*domain.Document, int, error) {
	if opts.hours < 0 {
		return nil, 0, errors.New("hours must be non-negative")
	}
	if opts.drop < 0 || opts.drop >= 1 {
		return nil, 0, errors.New("drop must be in [0, 1)")
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	geometry := map[string]any{"type": "Point", "coordinates": []float64{opts.lon, opts.lat}}

	features := make([]domain.Observation, 0, opts.hours+1)
	dropped := 0
	for h := 0; h <= opts.hours; h++ {
		interior := h > 0 && h < opts.hours
		if interior && rng.Float64() < opts.drop {
			dropped++
			continue
		}

		ts := opts.start.Add(time.Duration(h) * domain.Cadence)
		temp := 15 + 8*math.Sin(2*math.Pi*float64(ts.Hour()-9)/24) + rng.NormFloat64()*0.5
		obs := domain.NewObservation(ts, math.Round(temp*10)/10)
		if err := obs.SetAttribute("geometry", geometry); err != nil {
			return nil, 0, err
		}
		if err := obs.SetProperty("station", opts.station); err != nil {
			return nil, 0, err
		}
		if err := obs.SetProperty("unit", "degC"); err != nil {
			return nil, 0, err
		}
		features = append(features, obs)
	}

	// Shuffle so consumers cannot rely on input order.
	rng.Shuffle(len(features), func(i, j int) { features[i], features[j] = features[j], features[i] })
	return domain.NewDocument(features), dropped, nil
}
