package pdf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcftira/baropodometry-web/internal/domain"
)

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid pdf header", []byte("%PDF-1.7\nsome content"), false},
		{"empty payload", nil, true},
		{"zero length", []byte{}, true},
		{"wrong magic", []byte("PK\x03\x04 zip content"), true},
		{"html error page", []byte("<html>404</html>"), true},
		{"truncated magic", []byte("%PD"), true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePDF(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, domain.ErrorTypeValidation, domain.TypeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePDF_SizeLimit(t *testing.T) {
	v := NewValidator()

	oversized := append([]byte("%PDF-1.7"), bytes.Repeat([]byte{0}, maxPDFSize)...)
	err := v.ValidatePDF(oversized)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	atLimit := append([]byte("%PDF-1.7"), bytes.Repeat([]byte{0}, maxPDFSize-8)...)
	assert.NoError(t, v.ValidatePDF(atLimit))
}
