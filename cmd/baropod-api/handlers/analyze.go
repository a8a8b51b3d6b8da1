package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mcftira/baropodometry-web/internal/analysis"
	"github.com/mcftira/baropodometry-web/internal/domain"
	"github.com/mcftira/baropodometry-web/internal/observability"
)

// Three 25MB reports plus multipart framing.
const maxUploadBytes = 80 << 20

// stageFields maps multipart field names onto acquisition stages, in
// protocol order.
var stageFields = []struct {
	Field string
	Stage domain.Stage
}{
	{"neutral", domain.StageNeutral},
	{"closed_eyes", domain.StageClosedEyes},
	{"cotton_rolls", domain.StageCottonRolls},
}

// AnalyzeHandler accepts the three-report upload and runs the pipeline.
type AnalyzeHandler struct {
	logger  *observability.Logger
	service *analysis.Service
}

// NewAnalyzeHandler creates the analyze handler.
func NewAnalyzeHandler(logger *observability.Logger, service *analysis.Service) *AnalyzeHandler {
	return &AnalyzeHandler{logger: logger, service: service}
}

// Analyze handles POST /api/analyze.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	var (
		inputs  []domain.StageInput
		missing []string
	)
	for _, sf := range stageFields {
		file, header, err := r.FormFile(sf.Field)
		if err != nil {
			missing = append(missing, sf.Field)
			continue
		}
		data, err := readUpload(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read field "+sf.Field)
			return
		}
		inputs = append(inputs, domain.StageInput{
			Stage:    sf.Stage,
			Filename: header.Filename,
			Data:     data,
		})
	}
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "Missing PDF(s): "+strings.Join(missing, ", "))
		return
	}

	mode := r.FormValue("mode")

	result, err := h.service.Analyze(ctx, mode, inputs)
	if err != nil {
		h.logger.Error().Err(err).Msg("Analysis failed")
		writeError(w, statusFor(err), messageFor(err))
		return
	}

	writeData(w, http.StatusOK, result)
}

func readUpload(file multipart.File) ([]byte, error) {
	defer file.Close()
	return io.ReadAll(file)
}
