package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/wbrown/janus-cq/cq"
	"github.com/wbrown/janus-cq/cq/storage"
)

// TestDataConfig sizes a generated market database.
type TestDataConfig struct {
	OutputPath string
	NumSymbols int
	NumDays    int
	BarsPerDay int
	Seed       int64
}

func DefaultOHLCConfig() TestDataConfig {
	return TestDataConfig{OutputPath: "testdb", NumSymbols: 5, NumDays: 10, BarsPerDay: 4, Seed: 1}
}

func MediumOHLCConfig() TestDataConfig {
	return TestDataConfig{OutputPath: "testdb-medium", NumSymbols: 20, NumDays: 60, BarsPerDay: 26, Seed: 1}
}

func LargeOHLCConfig() TestDataConfig {
	return TestDataConfig{OutputPath: "testdb-large", NumSymbols: 50, NumDays: 250, BarsPerDay: 78, Seed: 1}
}

var sectors = []string{"tech", "energy", "health", "finance"}

// schema lists relations in the order they are written to schema.txt.
var schema = []struct {
	name  string
	types []string
}{
	{"Symbol", []string{"int", "string"}},
	{"Sector", []string{"string", "string"}},
	{"Bar", []string{"int", "int", "int", "int", "int"}},
}

// BuildTestData generates the relations of a market database:
//
//	Symbol(id, ticker)
//	Sector(ticker, sector)
//	Bar(symbol, day, bar, close, volume)
func BuildTestData(cfg TestDataConfig) storage.MemorySource {
	rnd := rand.New(rand.NewSource(cfg.Seed))
	src := storage.MemorySource{}

	for s := 0; s < cfg.NumSymbols; s++ {
		ticker := fmt.Sprintf("SYM%03d", s)
		src["Symbol"] = append(src["Symbol"], []cq.Constant{cq.Int(int64(s)), cq.Str(ticker)})
		src["Sector"] = append(src["Sector"], []cq.Constant{cq.Str(ticker), cq.Str(sectors[s%len(sectors)])})

		price := int64(50 + rnd.Intn(450))
		for d := 0; d < cfg.NumDays; d++ {
			for b := 0; b < cfg.BarsPerDay; b++ {
				price += int64(rnd.Intn(11) - 5)
				if price < 1 {
					price = 1
				}
				src["Bar"] = append(src["Bar"], []cq.Constant{
					cq.Int(int64(s)),
					cq.Int(int64(d)),
					cq.Int(int64(b)),
					cq.Int(price),
					cq.Int(int64(100 + rnd.Intn(10000))),
				})
			}
		}
	}
	return src
}

// WriteDatabase writes schema.txt and files/<Relation>.csv under dir.
func WriteDatabase(dir string, src storage.MemorySource) error {
	if err := os.MkdirAll(filepath.Join(dir, "files"), 0o755); err != nil {
		return err
	}

	var sb strings.Builder
	for _, rel := range schema {
		fmt.Fprintf(&sb, "%s %s\n", rel.name, strings.Join(rel.types, " "))
	}
	if err := os.WriteFile(storage.SchemaPath(dir), []byte(sb.String()), 0o644); err != nil {
		return err
	}

	for _, rel := range schema {
		if err := writeRelation(storage.RelationPath(dir, rel.name), src[rel.name]); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel.name, err)
		}
	}
	return nil
}

func writeRelation(path string, rows [][]cq.Constant) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, row := range rows {
		fields := make([]string, len(row))
		for i, c := range row {
			fields[i] = c.String()
		}
		w.WriteString(strings.Join(fields, ","))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadBadger copies every generated relation into a badger store at path.
func LoadBadger(path string, src storage.MemorySource) error {
	store, err := storage.NewBadgerStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, rel := range schema {
		rows, err := src.Open(rel.name, len(rel.types))
		if err != nil {
			return err
		}
		if _, err := store.Load(rel.name, rows); err != nil {
			return fmt.Errorf("failed to load %s: %w", rel.name, err)
		}
	}
	return nil
}
