package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/trimline-cli/api"
	"github.com/user/trimline-cli/db"
	"github.com/user/trimline-cli/logging"
)

const (
	maxRequestBody = 4 << 10
	probeTimeout   = 30 * time.Second
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, api.Health{Status: "ok"})
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := db.SelectAssets(s.db)
	if err != nil {
		s.logger.Error().Err(err).Msg("list assets")
		writeError(w, http.StatusInternalServerError, "could not list assets")
		return
	}
	out := make([]api.AssetInfo, 0, len(assets))
	for _, a := range assets {
		info := api.AssetInfo{ID: a.ID, Path: a.Path, Title: a.Title}
		if a.Duration != nil {
			info.Duration = *a.Duration
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAssetInfo returns the asset's duration, probing the file with ffprobe the
// first time and caching the result. Concurrent first requests share one probe.
func (s *Server) handleAssetInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	asset, err := db.SelectAssetByID(s.db, id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str(logging.FieldAssetID, id).Msg("load asset")
		writeError(w, http.StatusInternalServerError, "could not load asset")
		return
	}

	duration, err := s.duration(r, asset)
	if err != nil {
		s.logger.Warn().Err(err).Str(logging.FieldAssetID, id).Msg("probe duration")
		writeError(w, http.StatusBadGateway, "could not probe duration")
		return
	}

	writeJSON(w, http.StatusOK, api.AssetInfo{ID: asset.ID, Path: asset.Path, Title: asset.Title, Duration: duration})
}

func (s *Server) duration(r *http.Request, asset *db.Asset) (float64, error) {
	if asset.Duration != nil {
		return *asset.Duration, nil
	}
	v, err, _ := s.probes.Do(asset.ID, func() (interface{}, error) {
		// Shared by every waiter, so it must outlive the request that started it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), probeTimeout)
		defer cancel()
		d, err := s.probe(ctx, asset.Path)
		if err != nil {
			return 0.0, err
		}
		if err := db.UpdateAssetDuration(s.db, asset.ID, d); err != nil {
			s.logger.Warn().Err(err).Str(logging.FieldAssetID, asset.ID).Msg("cache duration")
		}
		return d, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// validateRange checks a requested cut. duration <= 0 means unknown.
func validateRange(req api.TrimRequest, duration float64) error {
	switch {
	case math.IsNaN(req.Start) || math.IsNaN(req.End):
		return errors.New("start and end must be numbers")
	case req.Start < 0:
		return errors.New("start must not be negative")
	case req.End <= req.Start:
		return errors.New("end must be greater than start")
	case duration > 0 && req.End > duration:
		return fmt.Errorf("end exceeds duration %.3f", duration)
	}
	return nil
}

func (s *Server) handleCommitTrim(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	asset, err := db.SelectAssetByID(s.db, id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str(logging.FieldAssetID, id).Msg("load asset")
		writeError(w, http.StatusInternalServerError, "could not load asset")
		return
	}

	var req api.TrimRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var duration float64
	if asset.Duration != nil {
		duration = *asset.Duration
	}
	if err := validateRange(req, duration); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := db.InsertTrimJob(s.db, uuid.New().String(), asset.ID, req.Start, req.End)
	if err != nil {
		s.logger.Error().Err(err).Str(logging.FieldAssetID, id).Msg("queue trim job")
		writeError(w, http.StatusInternalServerError, "could not queue trim")
		return
	}
	if s.jobs != nil {
		s.jobs.Notify()
	}

	s.logger.Info().
		Str(logging.FieldJobID, job.ID).
		Str(logging.FieldAssetID, asset.ID).
		Float64(logging.FieldStart, req.Start).
		Float64(logging.FieldEnd, req.End).
		Msg("trim queued")
	writeJSON(w, http.StatusAccepted, api.TrimAccepted{JobID: job.ID, Status: job.Status})
}

func (s *Server) handleTrimStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := db.SelectTrimJobByID(s.db, jobID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "trim job not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str(logging.FieldJobID, jobID).Msg("load trim job")
		writeError(w, http.StatusInternalServerError, "could not load trim job")
		return
	}
	writeJSON(w, http.StatusOK, toAPIJob(*job))
}

func (s *Server) handleListTrims(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := db.SelectAssetByID(s.db, id); errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	jobs, err := db.SelectTrimJobsByAsset(s.db, id)
	if err != nil {
		s.logger.Error().Err(err).Str(logging.FieldAssetID, id).Msg("list trim jobs")
		writeError(w, http.StatusInternalServerError, "could not list trim jobs")
		return
	}
	out := make([]api.TrimJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toAPIJob(j))
	}
	writeJSON(w, http.StatusOK, out)
}

func toAPIJob(j db.TrimJob) api.TrimJob {
	out := api.TrimJob{
		JobID:      j.ID,
		AssetID:    j.AssetID,
		Start:      j.Start,
		End:        j.End,
		Status:     j.Status,
		OutputPath: j.OutputPath,
		CreatedAt:  j.CreatedAt,
		FinishedAt: j.FinishedAt,
	}
	if j.Status == db.StatusError {
		out.Error = j.Log
	}
	return out
}
