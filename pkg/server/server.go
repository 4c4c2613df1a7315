// Package server exposes the evidence service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/casevault/casevault/pkg/evidence"
	"github.com/casevault/casevault/pkg/store"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// maxMultipartMemory bounds how much of a multipart body is held in
// memory before spilling to temporary files.
const maxMultipartMemory = 32 << 20

type Server struct {
	Handler *chi.Mux

	service *evidence.Service
}

func NewServer(service *evidence.Service) *Server {
	s := &Server{service: service}

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("casevault"))
	})

	r.Post("/submit-evidence", s.handleSubmit)
	r.Post("/verify-evidence", s.handleVerify)
	r.Get("/evidence-list", s.handleList)

	s.Handler = r
	return s
}

type submitResponse struct {
	Success    bool   `json:"success"`
	EvidenceID string `json:"evidenceId"`
	Hash       string `json:"hash"`
	Message    string `json:"message"`
}

type verifyResponse struct {
	Success         bool            `json:"success"`
	IsValid         bool            `json:"isValid"`
	StoredHash      string          `json:"storedHash"`
	CalculatedHash  string          `json:"calculatedHash"`
	EvidenceDetails evidenceDetails `json:"evidenceDetails"`
}

type evidenceDetails struct {
	FileName   string    `json:"fileName"`
	UploadDate time.Time `json:"uploadDate"`
	OfficerID  string    `json:"officerId"`
}

type listResponse struct {
	Success bool       `json:"success"`
	Data    []listItem `json:"data"`
}

type listItem struct {
	EvidenceID string    `json:"evidenceId"`
	CaseID     string    `json:"caseId"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	UploadDate time.Time `json:"uploadDate"`
	OfficerID  string    `json:"officerId"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	// A body that isn't (parseable) multipart simply carries no file,
	// which the service rejects as ErrNoFile.
	_ = r.ParseMultipartForm(maxMultipartMemory)

	req := evidence.SubmitRequest{
		CaseID:     r.FormValue("caseId"),
		EvidenceID: r.FormValue("evidenceId"),
		FileName:   r.FormValue("fileName"),
		FileType:   r.FormValue("fileType"),
		OfficerID:  r.FormValue("officerId"),
	}

	file, header, err := r.FormFile("evidenceFile")
	if err == nil {
		defer file.Close()
		req.File = &evidence.Upload{
			Name:     header.Filename,
			Contents: file,
		}
	}

	result, err := s.service.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Success:    true,
		EvidenceID: result.EvidenceID,
		Hash:       result.Hash,
		Message:    "Evidence submitted successfully",
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseMultipartForm(maxMultipartMemory)

	req := evidence.VerifyRequest{
		CaseID:     r.FormValue("caseId"),
		EvidenceID: r.FormValue("evidenceId"),
	}

	file, header, err := r.FormFile("verifyFile")
	if err == nil {
		defer file.Close()
		req.File = &evidence.Upload{
			Name:     header.Filename,
			Contents: file,
		}
	}

	result, err := s.service.Verify(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Verifying against unknown evidence is a regular outcome,
			// served with a 200.
			writeJSON(w, http.StatusOK, errorResponse{
				Error: "Evidence not found in database",
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Success:        true,
		IsValid:        result.IsValid,
		StoredHash:     result.StoredHash,
		CalculatedHash: result.CalculatedHash,
		EvidenceDetails: evidenceDetails{
			FileName:   result.Record.FileName,
			UploadDate: result.Record.UploadedAt,
			OfficerID:  result.Record.OfficerID,
		},
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := make([]listItem, 0, len(records))
	for _, record := range records {
		data = append(data, listItem{
			EvidenceID: record.EvidenceID,
			CaseID:     record.CaseID,
			FileName:   record.FileName,
			FileType:   record.FileType,
			UploadDate: record.UploadedAt,
			OfficerID:  record.OfficerID,
		})
	}

	writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Data:    data,
	})
}

// writeServiceError maps a service error to a status code: a missing
// upload is the caller's fault, everything else is a server failure.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, evidence.ErrNoFile) {
		status = http.StatusBadRequest
	} else {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.WithError(err).Error("unable to encode response")
	}
}
