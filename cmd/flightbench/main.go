// flightbench is the offline companion tool: it generates seed datasets,
// runs the search algorithms against a seed without a server, and exports
// the durable run history.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/internal/infrastructure/persistence"
	"flightdeck-service/internal/interface/repository"
	"flightdeck-service/pkg/logger"
	"flightdeck-service/pkg/searching"
	"flightdeck-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "flightbench",
		Usage: "Seed generation and offline search benchmarking for flightdeck",
		Commands: []*cli.Command{
			seedCommand(),
			searchCommand(),
			benchCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// seedCommand creates the seed command
func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Generate a deterministic random flight dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output path (.ndjson or .ndjson.zst)",
				Value: "flights.ndjson",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Number of flights to generate",
				Value: 1000,
			},
			&cli.IntFlag{
				Name:  "rand-seed",
				Usage: "Seed for the random generator",
				Value: 1,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			flights := generateFlights(c.Int("count"), int64(c.Int("rand-seed")))
			if err := repository.WriteSeed(c.String("out"), flights); err != nil {
				return err
			}
			fmt.Printf("Wrote %d flights to %s\n", len(flights), c.String("out"))
			return nil
		},
	}
}

// searchCommand creates the search command
func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Run one search algorithm against a seed file",
		Flags: append(searchFlags(),
			&cli.StringFlag{
				Name:  "algorithm",
				Usage: "Search algorithm (linear, binary, hash)",
				Value: "linear",
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			algo, err := searching.ParseAlgorithm(c.String("algorithm"))
			if err != nil {
				return err
			}
			return runSeedSearch(ctx, c, []searching.Algorithm{algo})
		},
	}
}

// benchCommand creates the bench command
func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Run every search algorithm against a seed file",
		Flags: searchFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			return runSeedSearch(ctx, c, searching.Algorithms())
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "seed",
			Usage: "Seed file to search",
			Value: "flights.ndjson",
		},
		&cli.StringFlag{
			Name:  "query",
			Usage: "Search query",
		},
		&cli.StringFlag{
			Name:  "field",
			Usage: "Record field to search (id, origin, destination, airline, price)",
			Value: "origin",
		},
	}
}

func runSeedSearch(ctx context.Context, c *cli.Command, algorithms []searching.Algorithm) error {
	field, err := entity.ParseSearchField(c.String("field"))
	if err != nil {
		return err
	}
	query := c.String("query")
	if query == "" {
		return fmt.Errorf("query is required")
	}

	flights, err := repository.ReadSeed(c.String("seed"))
	if err != nil {
		return fmt.Errorf("loading seed: %w", err)
	}

	session := uuid.NewString()
	fmt.Printf("Session %s: %d records, field=%s, query=%q\n", session, len(flights), field, query)

	access := accessorFor(field)
	for _, algo := range algorithms {
		started := time.Now()
		matches, err := searching.Search(ctx, flights, query, access, algo)
		if err != nil {
			return fmt.Errorf("running %s search: %w", algo, err)
		}
		fmt.Printf("  %-8s %6d matches in %.6fs\n", algo, len(matches), time.Since(started).Seconds())
		if len(algorithms) == 1 {
			for i, f := range matches {
				if i >= 20 {
					fmt.Printf("  ... %d more\n", len(matches)-i)
					break
				}
				fmt.Printf("  #%d %s -> %s  %s  %s  %.2f\n",
					f.ID, f.Origin, f.Destination, f.Airline, f.DepartureDate, f.EconomyPrice)
			}
		}
	}
	return nil
}

// exportCommand creates the export command
func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the run history database as NDJSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "Run history database path",
				Value: "runs.db",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output path (.ndjson or .ndjson.zst)",
				Value: "runs.ndjson",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum runs per kind",
				Value: 10000,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return exportRuns(ctx, c.String("db"), c.String("out"), c.Int("limit"))
		},
	}
}

func exportRuns(ctx context.Context, dbPath, outPath string, limit int) error {
	db, err := persistence.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer db.Close()

	history, err := repository.NewSQLiteRunHistory(db, logger.NewNop())
	if err != nil {
		return fmt.Errorf("initializing run history: %w", err)
	}
	defer history.Close()

	sortRuns, err := history.RecentSortRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("reading sort runs: %w", err)
	}
	searchRuns, err := history.RecentSearchRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("reading search runs: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(outPath, ".zst") {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("creating zstd encoder: %w", err)
		}
		w = enc
	}
	bw := bufio.NewWriter(w)

	type line struct {
		Kind string `json:"kind"`
		Run  any    `json:"run"`
	}
	writeLine := func(l line) error {
		data, err := json.Marshal(l)
		if err != nil {
			return err
		}
		_, err = bw.Write(append(data, '\n'))
		return err
	}
	for _, r := range sortRuns {
		if err := writeLine(line{Kind: "sort", Run: r}); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
	}
	for _, r := range searchRuns {
		if err := writeLine(line{Kind: "search", Run: r}); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("finishing zstd stream: %w", err)
		}
	}
	fmt.Printf("Exported %d sort runs and %d search runs to %s\n", len(sortRuns), len(searchRuns), outPath)
	return nil
}

var airlines = []string{
	"Atlantic Air", "Blue Horizon", "Cirrus Airways", "Delta Wind",
	"Equator Lines", "Falcon Jet", "Golden Eagle", "Meridian Air",
}

var airports = []string{
	"JFK", "LAX", "ORD", "ATL", "DFW", "SFO", "SEA", "MIA",
	"GRU", "GIG", "BSB", "LHR", "CDG", "FRA", "AMS", "NRT",
}

// generateFlights builds a reproducible dataset. Departure dates rotate
// through the accepted formats so the parser and the unknown-date sorting
// paths both get exercised by real seeds.
func generateFlights(count int, randSeed int64) []entity.Flight {
	rng := rand.New(rand.NewSource(randSeed))
	flights := make([]entity.Flight, 0, count)
	for i := 0; i < count; i++ {
		origin := airports[rng.Intn(len(airports))]
		dest := airports[rng.Intn(len(airports))]
		for dest == origin {
			dest = airports[rng.Intn(len(airports))]
		}
		year := 2024 + rng.Intn(2)
		month := 1 + rng.Intn(12)
		day := 1 + rng.Intn(28)

		var date string
		switch rng.Intn(6) {
		case 0:
			date = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		case 1:
			date = fmt.Sprintf("%04d/%02d/%02d", year, month, day)
		case 2:
			date = fmt.Sprintf("%02d/%02d/%04d", day, month, year)
		case 3:
			date = fmt.Sprintf("%02d-%02d-%04d", day, month, year)
		case 4:
			date = fmt.Sprintf("%04d-%02d-%02d %02d:%02d:00", year, month, day, rng.Intn(24), rng.Intn(60))
		default:
			date = fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00Z", year, month, day, rng.Intn(24), rng.Intn(60))
		}

		economy := 50 + rng.Float64()*950
		flight := entity.Flight{
			ID:              int64(i + 1),
			Origin:          origin,
			Destination:     dest,
			Airline:         airlines[rng.Intn(len(airlines))],
			DepartureDate:   date,
			DurationMinutes: 45 + rng.Intn(900),
			EconomyPrice:    float64(int(economy*100)) / 100,
			Demand:          rng.Intn(101),
		}
		if rng.Intn(3) == 0 {
			exec := flight.EconomyPrice * 2.5
			flight.ExecutivePrice = &exec
		}
		if rng.Intn(5) == 0 {
			prem := flight.EconomyPrice * 4
			flight.PremiumPrice = &prem
		}
		flights = append(flights, flight)
	}
	return flights
}

// accessorFor mirrors the pipeline's field accessors for offline runs.
func accessorFor(field entity.SearchField) func(entity.Flight) string {
	switch field {
	case entity.FieldID:
		return func(f entity.Flight) string { return utils.FormatID(f.ID) }
	case entity.FieldDestination:
		return func(f entity.Flight) string { return f.Destination }
	case entity.FieldAirline:
		return func(f entity.Flight) string { return f.Airline }
	case entity.FieldPrice:
		return func(f entity.Flight) string { return utils.FormatPrice(f.EconomyPrice) }
	default:
		return func(f entity.Flight) string { return f.Origin }
	}
}
