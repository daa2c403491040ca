package ocr

import "context"

// MockEngine is a configurable in-memory OCR engine for tests.
type MockEngine struct {
	Text       string
	Advanced   *AdvancedResult
	TextErr    error
	AnalyzeErr error
}

// DetectText returns the configured text or error.
func (m *MockEngine) DetectText(ctx context.Context, doc []byte) (string, error) {
	if m.TextErr != nil {
		return "", m.TextErr
	}
	return m.Text, nil
}

// AnalyzeDocument returns the configured result or error.
func (m *MockEngine) AnalyzeDocument(ctx context.Context, doc []byte) (*AdvancedResult, error) {
	if m.AnalyzeErr != nil {
		return nil, m.AnalyzeErr
	}
	return m.Advanced, nil
}
