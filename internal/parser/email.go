// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package parser

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mnako/letters"

	"github.com/thom-preemptive/s3-vector-ingestor-sub000/internal/extractor"
)

// parseEmail extracts headers and body text from an EML file.
func parseEmail(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open EML file: %w", err)
	}
	defer file.Close()

	email, err := letters.ParseEmail(file)
	if err != nil {
		return "", fmt.Errorf("failed to parse EML file: %w", err)
	}

	var builder strings.Builder
	if email.Headers.Subject != "" {
		builder.WriteString(fmt.Sprintf("Subject: %s\n", email.Headers.Subject))
	}
	if len(email.Headers.From) > 0 {
		from := email.Headers.From[0]
		if from.Name != "" {
			builder.WriteString(fmt.Sprintf("Sender: %s <%s>\n", from.Name, from.Address))
		} else {
			builder.WriteString(fmt.Sprintf("Sender: %s\n", from.Address))
		}
	}
	if !email.Headers.Date.IsZero() {
		builder.WriteString(fmt.Sprintf("Date: %s\n", email.Headers.Date.Format(time.RFC3339)))
	}
	builder.WriteString("\n")

	// Prefer the plain-text body; HTML-only mail goes through the HTML
	// content extractor.
	switch {
	case email.Text != "":
		builder.WriteString(email.Text)
	case email.HTML != "":
		text, _, err := extractor.ExtractHTML(email.HTML)
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML mail body: %w", err)
		}
		builder.WriteString(text)
	}

	result := strings.TrimSpace(builder.String())
	if result == "" {
		return "", fmt.Errorf("no content extracted from EML: %s", filePath)
	}
	return result, nil
}
