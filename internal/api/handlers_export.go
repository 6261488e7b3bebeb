package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/textblock/internal/export"
	"github.com/dgallion1/textblock/internal/format"
	"golang.org/x/net/html"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	highlight, _ := strconv.ParseBool(r.URL.Query().Get("highlight"))
	opts := export.Options{
		Highlight: highlight,
		Style:     s.cfg.HighlightStyle,
		Defaults:  s.cfg.Defaults(),
	}

	b := blockFrom(r)
	var buf bytes.Buffer
	err = b.View(func(root *html.Node, _ format.Inspector) error {
		return export.Write(&buf, root, f, opts)
	})
	if err != nil {
		s.log.Error("export failed", "block_id", b.ID, "format", f, "error", err)
		jsonError(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	if f == export.DOCX {
		name := b.Snapshot().Title
		if name == "" {
			name = b.ID
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sanitizeFilename(name)+".docx"))
	}
	w.Write(buf.Bytes())
}
