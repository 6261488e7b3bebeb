package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/textblock/internal/block"
	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/parser"
)

// Worker turns an uploaded document into a new block.
type Worker struct {
	blocks   *block.Store
	log      *slog.Logger
	opts     parser.Options
	defaults dom.Defaults
}

func NewWorker(blocks *block.Store, log *slog.Logger, opts parser.Options, defaults dom.Defaults) *Worker {
	return &Worker{
		blocks:   blocks,
		log:      log,
		opts:     opts,
		defaults: defaults,
	}
}

// Process runs the import pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "cancelled")
		return
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.opts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	data := job.FileData()
	content, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	title := content.Title
	if job.Title != "" {
		title = job.Title
	}

	// Phase 2: Load into a new block
	job.SetStatus(StatusLoading, "loading")
	b := block.New(block.NewID(), block.Options{Defaults: w.defaults, Log: w.log})
	b.SetTitle(title)
	b.SetContent(content.Nodes)
	w.blocks.Put(b)

	job.Complete(b.ID, title, ContentHashHex(data))
	log.Info("import complete", "block_id", b.ID, "nodes", len(content.Nodes))
}
