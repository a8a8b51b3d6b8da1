package pdf

import (
	"bytes"
	"fmt"

	"github.com/mcftira/baropodometry-web/internal/domain"
)

// maxPDFSize caps uploaded report size. Posturography reports are a few MB
// at most; anything larger is rejected up front.
const maxPDFSize = 25 * 1024 * 1024

var pdfMagic = []byte("%PDF-")

// Validator checks uploaded PDF payloads before they enter the pipeline.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePDF validates that data looks like a readable PDF document.
func (v *Validator) ValidatePDF(data []byte) error {
	if len(data) == 0 {
		return domain.ValidationError("PDF payload is empty", nil)
	}
	if len(data) > maxPDFSize {
		return domain.ValidationError(
			fmt.Sprintf("PDF payload too large (%d bytes, limit %d)", len(data), maxPDFSize), nil)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return domain.ValidationError("payload is not a PDF (missing %PDF header)", nil)
	}
	return nil
}
