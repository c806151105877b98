package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wbrown/janus-cq/cq/catalog"
)

func main() {
	configType := flag.String("config", "default", "Config type: default, medium, or large")
	out := flag.String("out", "", "Output directory (overrides the config default)")
	badgerDir := flag.String("badger", "", "Also load the relations into a badger store at this path")
	flag.Parse()

	var config TestDataConfig
	switch *configType {
	case "default":
		config = DefaultOHLCConfig()
	case "medium":
		config = MediumOHLCConfig()
	case "large":
		config = LargeOHLCConfig()
	default:
		fmt.Fprintf(os.Stderr, "Unknown config type: %s (use 'default', 'medium', or 'large')\n", *configType)
		os.Exit(1)
	}
	if *out != "" {
		config.OutputPath = *out
	}

	fmt.Printf("Building test database: %s\n", config.OutputPath)
	fmt.Printf("  Symbols: %d\n", config.NumSymbols)
	fmt.Printf("  Days: %d\n", config.NumDays)
	fmt.Printf("  Bars/day: %d\n", config.BarsPerDay)
	fmt.Printf("  Total bars: %d\n", config.NumSymbols*config.NumDays*config.BarsPerDay)
	fmt.Println()

	src := BuildTestData(config)
	if err := WriteDatabase(config.OutputPath, src); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build database: %v\n", err)
		os.Exit(1)
	}

	cat, err := catalog.Open(config.OutputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	for _, name := range cat.Relations() {
		types, _ := cat.Schema(name)
		fmt.Printf("  %s %v: %d rows\n", name, types, len(src[name]))
	}

	if *badgerDir != "" {
		if err := LoadBadger(*badgerDir, src); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load badger store: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  Loaded into %s\n", *badgerDir)
	}

	fmt.Println("\nDone! Query it with:")
	fmt.Printf("   cq evaluate %s query.txt answer.csv\n", config.OutputPath)
}
