package main

import (
	"log"
	"os"

	"github.com/parquet-go/parquet-go"
)

type Event struct {
	ID     int64   `parquet:"id"`
	Energy float64 `parquet:"energy"`
	Pt     float64 `parquet:"pt"`
	Label  string  `parquet:"label"`
	Good   bool    `parquet:"good"`
}

func main() {
	events := []Event{
		{ID: 1, Energy: 1.2, Pt: 0.8, Label: "bkg", Good: true},
		{ID: 2, Energy: 5.4, Pt: 3.1, Label: "sig", Good: true},
		{ID: 3, Energy: 10.9, Pt: 7.6, Label: "sig", Good: false},
		{ID: 4, Energy: 2.3, Pt: 1.9, Label: "bkg", Good: true},
		{ID: 5, Energy: 8.0, Pt: 5.5, Label: "sig", Good: true},
	}

	file, err := os.Create("events.parquet")
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Event](file)
	defer writer.Close()

	if _, err := writer.Write(events); err != nil {
		log.Fatal(err)
	}

	log.Println("Generated events.parquet with 5 events")
}
