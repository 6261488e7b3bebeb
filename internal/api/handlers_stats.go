package api

import (
	"net/http"

	"github.com/dgallion1/textblock/internal/format"
)

func (s *Server) handleFonts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"fonts":         format.Fonts,
		"default_font":  format.DefaultFont,
		"default_color": format.DefaultColor,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"blocks":      s.blocks.Len(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"workers":     s.cfg.WorkerCount,
	})
}
