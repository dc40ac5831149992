package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/common"
	"github.com/jamaahin/docpipe/internal/entity"
	"github.com/jamaahin/docpipe/internal/pipeline"
	"github.com/jamaahin/docpipe/internal/progress"
)

// maxUploadMemory bounds how much of the multipart body stays in RAM;
// larger parts spill to temp files.
const maxUploadMemory = 32 << 20

// processResponse is the preview payload returned after a batch. The batch
// result's fields flatten into the top level.
type processResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	*entity.BatchResult
}

// handleProcess accepts a multipart batch, screens each file at the edge,
// and runs the survivors through the pipeline.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, "multipart form required: "+err.Error())
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.writeError(w, http.StatusBadRequest, "No files provided")
		return
	}
	if len(files) > constants.MaxFilesPerRequest {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"Maksimum %d file per upload. Anda mengirim %d file.",
			constants.MaxFilesPerRequest, len(files)))
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sessionID = progress.NewSessionID()
	}

	uploads, early := s.readUploads(files)
	result, err := s.pipeline.Process(ctx, sessionID, uploads)
	if len(early) > 0 {
		result.FileOutcomes = append(early, result.FileOutcomes...)
		result.TotalFiles += len(early)
		result.Failed += len(early)
	}
	if err != nil {
		detail := pipeline.NoUsableDetail(result.FileOutcomes)
		s.logger.Warn("server.process.no_records",
			"session_id", sessionID,
			"files", result.TotalFiles,
		)
		s.writeError(w, common.HTTPStatus(err), detail)
		return
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, result); err != nil {
			// Archiving is best effort; the preview still goes out.
			s.logger.Warn("server.archive_fail", "session_id", sessionID, "err", err)
		}
	}

	s.logger.Info("server.process.done",
		"session_id", sessionID,
		"files", result.TotalFiles,
		"records", len(result.Records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	s.writeJSON(w, http.StatusOK, processResponse{
		Status: "success",
		Message: fmt.Sprintf("Processed %d documents, consolidated to %d unique records",
			result.Successful, len(result.Records)),
		BatchResult: result,
	})
}

// readUploads screens extension and size limits before anything is spent on
// a file. Rejected files become failed outcomes with operator-facing
// messages; the rest are read fully into memory.
func (s *Server) readUploads(headers []*multipart.FileHeader) ([]entity.Upload, []entity.FileOutcome) {
	var uploads []entity.Upload
	var early []entity.FileOutcome

	fail := func(name, msg string) {
		early = append(early, entity.FileOutcome{
			Filename: name,
			Status:   constants.FileStatusFailed,
			Error:    msg,
		})
	}

	for _, fh := range headers {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !constants.IsAllowedExt(ext) {
			fail(fh.Filename, "Invalid file type: "+ext)
			continue
		}
		f, err := fh.Open()
		if err != nil {
			fail(fh.Filename, "unreadable upload: "+err.Error())
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			fail(fh.Filename, "unreadable upload: "+err.Error())
			continue
		}
		if len(data) > constants.MaxFileSizeBytes {
			sizeMB := float64(len(data)) / (1 << 20)
			fail(fh.Filename, fmt.Sprintf("File too large: %.1fMB (max %dMB)", sizeMB, constants.MaxFileSizeMB))
			continue
		}
		uploads = append(uploads, entity.Upload{Filename: fh.Filename, Data: data})
	}
	return uploads, early
}
