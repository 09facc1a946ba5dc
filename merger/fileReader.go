package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	merger "github.com/silab-bonn/merger_go/pkg"
)

// On-disk record layouts written by the clusterizer export step.
// All fields are little endian.
type clusterFileRecord struct {
	EventNumber int64
	MeanColumn  float64
	MeanRow     float64
	Charge      uint16
}

type hitFileRecord struct {
	EventNumber int64
	Column      uint16
	Row         uint16
	Charge      uint16
}

func readClusterFile(filename string) (*merger.MemoryTable, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &merger.ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	table := &merger.MemoryTable{}
	for {
		var record clusterFileRecord
		err := binary.Read(reader, binary.LittleEndian, &record)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading cluster file %s: %w", filename, err)
		}
		table.Records = append(table.Records, merger.ClusterRecord{
			EventNumber: record.EventNumber,
			MeanColumn:  record.MeanColumn,
			MeanRow:     record.MeanRow,
			Charge:      record.Charge,
		})
	}
	return table, nil
}

func readHitFile(filename string) ([]merger.HitRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &merger.ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var hits []merger.HitRecord
	for {
		var record hitFileRecord
		err := binary.Read(reader, binary.LittleEndian, &record)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading hit file %s: %w", filename, err)
		}
		hits = append(hits, merger.HitRecord{
			EventNumber: record.EventNumber,
			Column:      record.Column,
			Row:         record.Row,
			Charge:      record.Charge,
		})
	}
	return hits, nil
}
