// Command jamiat-import loads the jamiat/jamaat catalog from an Excel
// workbook without going through the HTTP API.
package main

import (
	"flag"
	"log"
	"os"

	"case-management-api/config"
	"case-management-api/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var file string
	flag.StringVar(&file, "file", "", "path to the .xlsx workbook to import")
	flag.Parse()

	if file == "" {
		log.Fatal("usage: jamiat-import -file catalog.xlsx")
	}

	f, err := os.Open(file)
	if err != nil {
		log.Fatalf("failed to open %s: %v", file, err)
	}
	defer f.Close()

	config.InitDB()

	result, err := services.ImportJamiatWorkbook(config.DB, f)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("Processed %d rows: %d imported, %d failed", result.TotalProcessed, result.SuccessCount, result.FailedCount)
	for _, rowError := range result.Errors {
		log.Printf("  %s", rowError)
	}
	if result.FailedCount > len(result.Errors) {
		log.Printf("  ... and %d more", result.FailedCount-len(result.Errors))
	}
}
