package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/textblock/internal/block"
	"github.com/dgallion1/textblock/internal/editing"
	"github.com/dgallion1/textblock/internal/format"
	"github.com/go-chi/chi/v5"
)

// maxEventBytes bounds JSON event bodies. Content updates carry whole blocks.
const maxEventBytes = 4 << 20

type contentRequest struct {
	HTML  string `json:"html"`
	Title string `json:"title"`
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	b := block.New(block.NewID(), block.Options{Defaults: s.cfg.Defaults(), Log: s.log})
	b.SetTitle(req.Title)
	snap, err := b.Input(req.HTML)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.blocks.Put(b)
	s.log.Info("block created", "block_id", b.ID)
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, blockFrom(r).Snapshot())
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "blockID")
	s.blocks.Delete(id)
	writeJSON(w, http.StatusOK, map[string]any{"block_id": id, "deleted": true})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := blockFrom(r).RenderPage(w); err != nil {
		s.log.Error("render page", "error", err)
	}
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := blockFrom(r).Input(req.HTML)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	// A JSON null clears the selection.
	var spec *block.RangeSpec
	if !decodeJSON(w, r, &spec) {
		return
	}
	snap, err := blockFrom(r).Select(spec)
	if err != nil {
		s.mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleBlur(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Related string `json:"related"`
	}
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	writeJSON(w, http.StatusOK, blockFrom(r).Blur(req.Related))
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Format string `json:"format"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	f, ok := format.ParseFormat(req.Format)
	if !ok {
		jsonError(w, fmt.Sprintf("unknown format: %q", req.Format), http.StatusBadRequest)
		return
	}
	snap, err := blockFrom(r).ToggleFormat(f)
	if err != nil {
		s.mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFont(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Family string `json:"family"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := blockFrom(r).ApplyFont(req.Family)
	if err != nil {
		s.mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color string `json:"color"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := blockFrom(r).ApplyColor(req.Color)
	if err != nil {
		s.mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// mutationError maps block and formatting errors to HTTP codes.
func (s *Server) mutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, block.ErrInvalidRange), errors.Is(err, editing.ErrUnsupported):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, format.ErrStructure):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		s.log.Error("block event failed", "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
