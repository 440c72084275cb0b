package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/imageio"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/spool"
)

// multipart parts above this size are buffered on disk by net/http
const formMemory = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code"`
}

type decodeBody struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type healthBody struct {
	Status        string  `json:"status"`
	MemoryUsageMB float64 `json:"memory_usage_mb"`
	Environment   string  `json:"environment"`
	Uploads       int     `json:"uploads"`
	UploadBytes   int64   `json:"upload_bytes"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Details: details, Code: code})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{
		Status:        "healthy",
		MemoryUsageMB: float64(s.heapInUse()) / (1 << 20),
		Environment:   s.cfg.Environment,
	}
	if s.spool != nil {
		files, size, err := s.spool.Stats()
		if err != nil {
			s.logger.Error("could not read spool stats", "error", err)
		}
		body.Uploads, body.UploadBytes = files, size
	}
	writeJSON(w, http.StatusOK, body)
}

// upload is an image part of a multipart request, staged in the spool.
type upload struct {
	name string
	file *os.File
}

func (u *upload) close(dir *spool.Dir) {
	_ = u.file.Close()
	dir.Remove(u.file.Name())
}

type uploadRules struct {
	prefix         string // spool file prefix
	badFileCode    string // error code for a rejected file extension
	requireMessage bool
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// readUpload validates the request and stages its "image" part. On failure
// the error response has already been written and ok is false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, rules uploadRules) (u *upload, ok bool) {
	if !s.memoryOK() {
		writeError(w, http.StatusServiceUnavailable, "HIGH_MEMORY", "server under heavy load", "try again in a few minutes")
		return nil, false
	}
	if r.ContentLength <= 0 || r.ContentLength > s.cfg.MaxContentLength {
		s.tooLarge(w)
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxContentLength)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.tooLarge(w)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "invalid parameters", err.Error())
		return nil, false
	}

	part, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "MISSING_IMAGE", "image not sent", "")
		return nil, false
	}
	defer part.Close()

	if rules.requireMessage && strings.TrimSpace(r.FormValue("message")) == "" {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "invalid parameters", "message is required")
		return nil, false
	}
	if _, err := imageio.FormatFromFilename(header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, rules.badFileCode, "invalid file", err.Error())
		return nil, false
	}

	f, err := s.stage(rules.prefix, header, part)
	if err != nil {
		s.internalError(w, r, err)
		return nil, false
	}
	return &upload{name: spool.SafeName(header.Filename), file: f}, true
}

func (s *Server) stage(prefix string, header *multipart.FileHeader, part multipart.File) (*os.File, error) {
	f, err := s.spool.Create(prefix, header.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(f, part); err != nil {
		_ = f.Close()
		s.spool.Remove(f.Name())
		return nil, fmt.Errorf("could not stage upload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		s.spool.Remove(f.Name())
		return nil, err
	}
	return f, nil
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)
	in, ok := s.readUpload(w, r, uploadRules{prefix: "temp", badFileCode: "INVALID_PARAMS", requireMessage: true})
	if !ok {
		return
	}
	defer in.close(s.spool)
	message := strings.TrimSpace(r.FormValue("message"))

	out, err := s.spool.Create("encoded", in.name)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	result := &upload{name: in.name, file: out}
	defer result.close(s.spool)

	logger := s.logger.With("file", in.name)
	format, err := s.codec.EncodeStream(r.Context(), in.file, out, message)
	switch {
	case errors.Is(err, stego.ErrInvalidImage):
		logger.Warn("invalid image", "error", err)
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "invalid image", err.Error())
		return
	case errors.Is(err, stego.ErrInsufficientCapacity):
		logger.Warn("image too small", "error", err)
		writeError(w, http.StatusBadRequest, "IMAGE_TOO_SMALL", "image is too small for the message", err.Error())
		return
	case errors.Is(err, stego.ErrEmptyPayload):
		writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "invalid parameters", err.Error())
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	if _, err := out.Seek(0, io.SeekStart); err != nil {
		s.internalError(w, r, err)
		return
	}

	base := strings.TrimSuffix(in.name, filepath.Ext(in.name))
	h := w.Header()
	h.Set("Content-Type", format.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="encoded_%s.%s"`, base, format.Extension()))
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	h.Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, out); err != nil {
		logger.Error("could not stream encoded image", "error", err)
		return
	}
	logger.Info("encoded", "format", format, "chars", len(message))
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)
	in, ok := s.readUpload(w, r, uploadRules{prefix: "temp_decode", badFileCode: "INVALID_FILE"})
	if !ok {
		return
	}
	defer in.close(s.spool)

	logger := s.logger.With("file", in.name)
	message, found, err := s.codec.DecodeStream(r.Context(), in.file)
	switch {
	case errors.Is(err, stego.ErrInvalidImage):
		logger.Warn("invalid image", "error", err)
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "invalid image", err.Error())
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	if !found || message == "" {
		logger.Info("no message found", "marker", found)
		writeError(w, http.StatusNotFound, "NO_MESSAGE", "message not found", "")
		return
	}
	logger.Info("decoded", "chars", len(message))
	writeJSON(w, http.StatusOK, decodeBody{Message: message, Success: true})
}

func (s *Server) tooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file too large",
		fmt.Sprintf("the maximum allowed size is %.1fMB", float64(s.cfg.MaxContentLength)/(1<<20)))
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", err.Error())
}
