// Command citytemp resolves a list of city names to coordinates via Wikidata
// and computes each city's mean monthly temperature from a CRU TS NetCDF
// file. Disambiguation of city names is interactive; everything else runs
// sequentially from start to finish.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/rtm0/citytemp/internal/cities"
	"github.com/rtm0/citytemp/internal/cru"
	"github.com/rtm0/citytemp/internal/wikidata"
)

var (
	gridFile   = flag.String("grid", "", "path to a CRU TS temperature file in NetCDF format")
	citiesFile = flag.String("cities", "", "path to the city list in CSV format")
	outFile    = flag.String("out", "", "path to the output CSV file")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *gridFile == "" || *citiesFile == "" || *outFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	list, err := cities.Load(*citiesFile)
	if err != nil {
		logger.Error("Could not load the city list", "err", err)
		os.Exit(1)
	}

	ds, err := cru.Open(*gridFile)
	if err != nil {
		logger.Error("Could not open the temperature dataset", "err", err)
		os.Exit(1)
	}
	defer ds.Close()
	logger.Info("CRU summary", ds.Summary()...)

	wd, err := wikidata.NewClient(logger, wikidata.DefaultSearchURL, wikidata.DefaultSPARQLURL)
	if err != nil {
		logger.Error("Could not create a Wikidata client", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	stdin := bufio.NewScanner(os.Stdin)
	for i := range list {
		c := &list[i]
		if err := process(ctx, logger, wd, ds, stdin, c); err != nil {
			// Left for the operator to resolve by hand; the run goes on.
			logger.Error("City left unresolved", "city", c.City, "country", c.Country, "err", err)
		}
		// Rewrite the output after every city so an abort loses at most one.
		if err := cities.Save(*outFile, list); err != nil {
			logger.Error("Could not write the output file", "err", err)
			os.Exit(1)
		}
	}
}

func process(ctx context.Context, logger *slog.Logger, wd *wikidata.Client, ds *cru.Dataset, stdin *bufio.Scanner, c *cities.City) error {
	if c.WikidataEntityID == "" {
		id, err := chooseEntity(ctx, wd, stdin, c.City, c.Country)
		if err != nil {
			return err
		}
		c.WikidataEntityID = id
	}
	lat, lon, err := wd.Coordinates(ctx, c.WikidataEntityID)
	if err != nil {
		return err
	}
	c.WikidataLatitude = &lat
	c.WikidataLongitude = &lon
	cellLat, cellLon := ds.CellCenter(lat, lon)
	logger.Info("Resolved", "city", c.City, "entity", c.WikidataEntityID,
		"lat", lat, "lon", lon, "cellLat", cellLat, "cellLon", cellLon)

	mean, err := ds.MeanAt(lat, lon)
	if err != nil {
		return err
	}
	c.AverageTemperature = &mean
	return nil
}

// chooseEntity asks the operator to pick the Wikidata entity matching the
// city, retrying with an edited search string until a candidate is chosen.
func chooseEntity(ctx context.Context, wd *wikidata.Client, stdin *bufio.Scanner, city, country string) (string, error) {
	search := city
	for {
		cands, err := wd.Search(ctx, search)
		if err != nil {
			return "", err
		}
		fmt.Printf("Select a match for %s, %s:\n", city, country)
		for i, cand := range cands {
			desc := cand.Description
			if desc == "" {
				desc = "no description"
			}
			fmt.Printf("  %d) %s: %s\n", i+1, cand.Label, desc)
		}
		fmt.Println("  0) none of these, edit the search string")
		fmt.Print("> ")
		choice, err := readChoice(stdin, len(cands))
		if err != nil {
			return "", err
		}
		if choice > 0 {
			return cands[choice-1].ID, nil
		}
		fmt.Printf("New search string for %s, %s: ", city, country)
		if !stdin.Scan() {
			return "", errors.New("stdin closed")
		}
		if s := strings.TrimSpace(stdin.Text()); s != "" {
			search = s
		}
	}
}

func readChoice(stdin *bufio.Scanner, max int) (int, error) {
	for {
		if !stdin.Scan() {
			return 0, errors.New("stdin closed")
		}
		n, err := strconv.Atoi(strings.TrimSpace(stdin.Text()))
		if err == nil && n >= 0 && n <= max {
			return n, nil
		}
		fmt.Printf("Enter a number between 0 and %d: ", max)
	}
}
