// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"os"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/extractor"
)

// parseHTML extracts structured text from a local HTML file using the
// same content extraction applied to fetched URLs.
func parseHTML(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read HTML file: %w", err)
	}

	text, _, err := extractor.ExtractHTML(string(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	if text == "" {
		return "", fmt.Errorf("no text extracted from HTML: %s", filePath)
	}
	return text, nil
}
