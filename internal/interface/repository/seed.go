// internal/interface/repository/seed.go
package repository

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"flightdeck-service/internal/domain/entity"

	"github.com/klauspost/compress/zstd"
)

// Seed files are NDJSON, one flight per line, optionally zstd-compressed
// when the path ends in .zst. The memory store backend loads them at
// startup and flightbench generates and consumes them offline.

// ReadSeed loads every flight from a seed file.
func ReadSeed(path string) ([]entity.Flight, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	var flights []entity.Flight
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var flight entity.Flight
		if err := json.Unmarshal([]byte(raw), &flight); err != nil {
			return nil, fmt.Errorf("failed to decode seed line %d: %w", line, err)
		}
		flights = append(flights, flight)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return flights, nil
}

// WriteSeed writes flights as a seed file, compressing when the path ends
// in .zst.
func WriteSeed(path string, flights []entity.Flight) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create seed file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		w = enc
	}

	bw := bufio.NewWriter(w)
	for _, flight := range flights {
		data, err := json.Marshal(flight)
		if err != nil {
			return fmt.Errorf("failed to encode flight %d: %w", flight.ID, err)
		}
		if _, err := bw.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write seed file: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush seed file: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to finish zstd stream: %w", err)
		}
	}
	return f.Close()
}
