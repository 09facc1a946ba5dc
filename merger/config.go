package main

import (
	"encoding/json"
	"fmt"
	"os"

	merger "github.com/silab-bonn/merger_go/pkg"
)

func LoadConfiguration(filename string) (merger.Configuration, error) {
	var config merger.Configuration

	// Default values
	config.Verbosity = 0
	config.ChunkSize = 5000000
	config.Fraction = 1
	config.Error = 3.0
	config.NBadEvents = 100
	config.NGoodEvents = 10
	config.CorrelationSearchRange = 20000
	config.GoodEventsSearchRange = 100
	config.EuclideanDistance = false
	config.NoDB = false
	config.Host = "127.0.0.1"
	config.User = "tbreader"
	config.Passwd = "tbreader"
	config.DBName = "TESTBEAM"
	config.CompressionLevel = 4

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}

	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func printConfiguration(config merger.Configuration) {
	fmt.Println("Verbosity: ", config.Verbosity)
	fmt.Println("RunNumber: ", config.RunNumber)
	fmt.Println("ChunkSize: ", config.ChunkSize)
	fmt.Println("Fraction: ", config.Fraction)
	fmt.Println("Error: ", config.Error)
	fmt.Println("NBadEvents: ", config.NBadEvents)
	fmt.Println("NGoodEvents: ", config.NGoodEvents)
	fmt.Println("CorrelationSearchRange: ", config.CorrelationSearchRange)
	fmt.Println("GoodEventsSearchRange: ", config.GoodEventsSearchRange)
	fmt.Println("EuclideanDistance: ", config.EuclideanDistance)
	fmt.Println("PixelSize: ", config.PixelSize)
	fmt.Println("HitFiles: ", config.HitFiles)
	fmt.Println("ClusterFiles: ", config.ClusterFiles)
	fmt.Println("FileOut: ", config.FileOut)
	fmt.Println("NoDB: ", config.NoDB)
	fmt.Println("Host: ", config.Host)
	fmt.Println("DBName: ", config.DBName)
	fmt.Println("CompressionLevel: ", config.CompressionLevel)
}
