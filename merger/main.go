package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	merger "github.com/silab-bonn/merger_go/pkg"
)

var configuration merger.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Sprintf("Error reading configuration file: %s", err)
		logger.Error(message)
		return
	}
	merger.SetConfiguration(configuration)
	merger.SetLogger(logger)
	VerbosityLevel = configuration.Verbosity

	if VerbosityLevel > 0 {
		printConfiguration(configuration)
	}

	nDuts := len(configuration.ClusterFiles)
	if nDuts == 0 {
		logger.Error("No cluster files in configuration")
		return
	}

	var alignment []merger.AlignmentConstants
	if configuration.NoDB {
		alignment = merger.IdentityAlignment(nDuts)
	} else {
		dbConn, err := merger.ConnectToDatabase(configuration.User,
			configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Sprintf("Error connecting to database: %s", err)
			logger.Error(message)
			return
		}
		defer dbConn.Close()
		alignment, err = merger.LoadAlignment(dbConn, configuration.RunNumber)
		if err != nil {
			return
		}
	}

	writer := merger.NewWriter(configuration.FileOut, nDuts, configuration.RunNumber)

	correlateHits(writer)

	tables := make([]merger.ClusterTable, nDuts)
	for dut, filename := range configuration.ClusterFiles {
		message := fmt.Sprintf("Reading clusters for DUT %d from %s", dut, filename)
		logger.Info(message, "main")
		table, err := readClusterFile(filename)
		if err != nil {
			logger.Error(err.Error())
			return
		}
		tables[dut] = table
	}

	collector := &merger.TrackletCollector{}
	err = merger.MergeClusterData(tables, alignment, configuration.PixelSize,
		configuration.ChunkSize, collector)
	if err != nil {
		message := fmt.Sprintf("Error merging cluster data: %s", err)
		logger.Error(message)
		return
	}
	if collector.Table == nil || collector.Table.Len() == 0 {
		logger.Error("No common events found between the cluster streams")
		return
	}

	alignConfig := merger.AlignmentConfig{
		Error:                  configuration.Error,
		NBadEvents:             configuration.NBadEvents,
		NGoodEvents:            configuration.NGoodEvents,
		CorrelationSearchRange: configuration.CorrelationSearchRange,
		GoodEventsSearchRange:  configuration.GoodEventsSearchRange,
	}
	if configuration.EuclideanDistance {
		alignConfig.Metric = merger.DistanceEuclidean
	}
	_, err = merger.ApplyAlignmentFix(collector.Table, alignConfig)
	if err != nil {
		message := fmt.Sprintf("Error fixing event alignment: %s", err)
		logger.Error(message)
		return
	}

	err = writer.WriteAlignment(alignment)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	err = writer.WriteTracklets(collector.Table)
	if err != nil {
		logger.Error(err.Error())
		return
	}

	err = writer.Close()
	if err != nil {
		message := fmt.Sprintf("Error closing output file: %s", err)
		logger.Error(message)
	}
}

// correlateHits builds the raw hit correlation histograms of every detector
// against detector 0 and stores them in the output file. Hit files are
// optional, merging works without them.
func correlateHits(writer *merger.Writer) {
	if len(configuration.HitFiles) < 2 {
		return
	}
	refHits, err := readHitFile(configuration.HitFiles[0])
	if err != nil {
		logger.Error(err.Error())
		return
	}
	refHits = merger.SelectHitRange(refHits, configuration.StartEventNumber,
		configuration.StopEventNumber)
	for index := 1; index < len(configuration.HitFiles); index++ {
		message := fmt.Sprintf("Correlating detector %d with detector 0", index)
		logger.Info(message, "main")
		dutHits, err := readHitFile(configuration.HitFiles[index])
		if err != nil {
			logger.Error(err.Error())
			return
		}
		dutHits = merger.SelectHitRange(dutHits, configuration.StartEventNumber,
			configuration.StopEventNumber)
		columnHist, rowHist, err := merger.CorrelateHits(refHits, dutHits, configuration.Fraction)
		if err != nil {
			message := fmt.Sprintf("Error correlating detector %d: %s", index, err)
			logger.Error(message)
			return
		}
		err = writer.WriteCorrelation(fmt.Sprintf("CorrelationColumn_%d_0", index), columnHist)
		if err != nil {
			logger.Error(err.Error())
			return
		}
		err = writer.WriteCorrelation(fmt.Sprintf("CorrelationRow_%d_0", index), rowHist)
		if err != nil {
			logger.Error(err.Error())
			return
		}
	}
}
