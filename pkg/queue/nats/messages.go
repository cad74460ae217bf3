package nats

import (
	"encoding/json"
	"fmt"

	"github.com/seoulquant/candlevec/pkg/model"
)

// Subjects for the ingest pipeline
const (
	// SubjectCandleWrite carries collected candle batches to the writer worker
	SubjectCandleWrite = "candlevec.candles.write"
	// SubjectVectorWrite carries embedded vectors to the index writer
	SubjectVectorWrite = "candlevec.vectors.write"
)

// Subjects returns all subjects the work-queue stream must cover
func Subjects() []string {
	return []string{SubjectCandleWrite, SubjectVectorWrite}
}

// CandleBatchMsg is a batch of candles collected from a provider
type CandleBatchMsg struct {
	Candles []model.Candle `json:"candles"`
}

// VectorWriteMsg is an embedded window vector with its index metadata
type VectorWriteMsg struct {
	Vector     []float64 `json:"vector"`
	StockCode  string    `json:"stock_code"`
	Timestamp  int64     `json:"timestamp"`
	WindowSize int       `json:"window_size"`
}

// Encode serializes a message to JSON
func Encode(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// DecodeCandleBatch deserializes a candle batch message
func DecodeCandleBatch(data []byte) (*CandleBatchMsg, error) {
	var msg CandleBatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode candle batch: %w", err)
	}
	return &msg, nil
}

// DecodeVectorWrite deserializes a vector write message
func DecodeVectorWrite(data []byte) (*VectorWriteMsg, error) {
	var msg VectorWriteMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode vector write: %w", err)
	}
	return &msg, nil
}
