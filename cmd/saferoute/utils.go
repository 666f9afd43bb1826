package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/upstream"
	"github.com/jawat-my/saferoute/utils"
)

// loadRow loads a row payload from a file or an inline JSON string.
func loadRow(path, inline string) (map[string]any, error) {
	var row map[string]any
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, err
		}
		return row, nil
	}
	if inline != "" {
		if err := json.Unmarshal([]byte(inline), &row); err != nil {
			return nil, err
		}
		return row, nil
	}
	return nil, errors.New("--row or --row-json is required")
}

// outputRawResult prints an upstream relay reply as its HTTP status plus the
// decoded body, the same shape the generated commands print for relay
// operations.
func outputRawResult(raw *upstream.RawResult) error {
	out := map[string]any{"status": raw.StatusCode}
	var body any
	if len(raw.Body) > 0 && json.Unmarshal(raw.Body, &body) == nil {
		out["body"] = body
	} else {
		out["body"] = string(raw.Body)
	}
	data, err := json.MarshalIndent(out, "", constants.JSONIndent)
	if err != nil {
		return err
	}
	utils.User("%s", string(data))
	return nil
}
