package csvtable

import (
	"fmt"
	"math"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"fitexport"
)

type recordParquetRow struct {
	Timestamp    string  `parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	HeartRateBPM float64 `parquet:"name=heart_rate_bpm, type=DOUBLE"`
	SpeedMPS     float64 `parquet:"name=speed_mps, type=DOUBLE"`
	DistanceM    float64 `parquet:"name=distance_m, type=DOUBLE"`
	AltitudeM    float64 `parquet:"name=altitude_m, type=DOUBLE"`
	CadenceRPM   float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	PowerW       float64 `parquet:"name=power_w, type=DOUBLE"`
	TemperatureC float64 `parquet:"name=temperature_c, type=DOUBLE"`
}

// WriteRecordParquet writes the table's record series as a SNAPPY-compressed
// parquet file. Missing samples are written as NaN so column shape stays
// uniform for downstream tooling.
func WriteRecordParquet(path string, t *fitexport.Table) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(recordParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range t.RowsOfType(fitexport.TypeRecord) {
		row := recordParquetRow{
			HeartRateBPM: floatOrNaN(r, "heart_rate"),
			SpeedMPS:     floatOrNaN(r, "speed"),
			DistanceM:    floatOrNaN(r, "distance"),
			AltitudeM:    floatOrNaN(r, "altitude"),
			CadenceRPM:   floatOrNaN(r, "cadence"),
			PowerW:       floatOrNaN(r, "power"),
			TemperatureC: floatOrNaN(r, "temperature"),
		}
		if ts, ok := r.Time("timestamp"); ok {
			row.Timestamp = ts.UTC().Format(time.RFC3339)
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("finish parquet: %w", err)
	}
	return fw.Close()
}

func floatOrNaN(r fitexport.Row, column string) float64 {
	if v, ok := r.Float(column); ok {
		return v
	}
	return math.NaN()
}
