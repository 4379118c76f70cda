// Package ingest turns resume and job description files into plain text.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/abhatt13/referral-outreach-app/internal/utils"
)

const (
	pdfMagic          = "%PDF-"
	defaultParseLimit = 30 * time.Second
)

// Ingestor extracts text from PDF byte streams and plain text files.
type Ingestor struct {
	parser  einoParser.Parser
	logger  *zap.Logger
	timeout time.Duration
}

type Option func(*Ingestor)

func WithLogger(logger *zap.Logger) Option {
	return func(i *Ingestor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithTimeout bounds a single PDF parse. A parse still running when it expires
// fails with ErrUndecodable.
func WithTimeout(d time.Duration) Option {
	return func(i *Ingestor) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// New builds an Ingestor. Pages are parsed separately so page order is kept when
// the text is joined back together.
func New(ctx context.Context, opts ...Option) (*Ingestor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, newError("init", "", ErrParserInitFailed, err.Error())
	}

	i := &Ingestor{
		parser:  p,
		logger:  zap.NewNop(),
		timeout: defaultParseLimit,
	}
	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

// Load reads path and returns its text. PDF files go through the PDF parser;
// .txt, .md and extension-less files are read as-is.
func (i *Ingestor) Load(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf", ".txt", ".md", "":
	default:
		err := newError("load", path, ErrUnsupportedFormat, fmt.Sprintf("extension %q", ext))
		i.logger.Error("unsupported document", zap.String("path", path), zap.Error(err))
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", newError("load", path, ErrReadFailed, err.Error())
	}

	if ext == ".pdf" {
		return i.ExtractText(ctx, data, path)
	}

	return string(data), nil
}

// ExtractText decodes a PDF byte stream and returns the page texts joined with a
// newline. A stream that cannot be decoded yields an empty string and an error
// wrapping ErrUndecodable; the failure is logged and never panics.
func (i *Ingestor) ExtractText(ctx context.Context, data []byte, uri string) (string, error) {
	start := time.Now()
	log := i.logger.With(zap.String("uri", uri), zap.Int("bytes", len(data)))

	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte(pdfMagic)) {
		err := newError("extract", uri, ErrUndecodable, "missing pdf header")
		log.Error("pdf extraction failed", zap.Error(err))
		return "", err
	}

	docs, err := i.parse(ctx, data, uri)
	if err != nil {
		err = newError("extract", uri, ErrUndecodable, err.Error())
		log.Error("pdf extraction failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return "", err
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		pages = append(pages, doc.Content)
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		err := newError("extract", uri, ErrEmptyDocument, fmt.Sprintf("%d pages without text", len(pages)))
		log.Warn("pdf has no text layer", zap.Error(err))
		return "", err
	}

	log.Debug("pdf extracted",
		zap.Int("pages", len(pages)),
		zap.Int("chars", len([]rune(text))),
		zap.String("preview", utils.TruncateForLog(text, 80)),
		zap.Duration("took", time.Since(start)),
	)

	return text, nil
}

type parseResult struct {
	docs []*schema.Document
	err  error
}

// parse runs the PDF parser under the ingestor timeout. The parser does not
// watch ctx, so a parse that outlives it is abandoned and its result dropped.
func (i *Ingestor) parse(ctx context.Context, data []byte, uri string) ([]*schema.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pdf parse not started: %w", err)
	}

	done := make(chan parseResult, 1)
	go func() {
		docs, err := i.parsePages(ctx, data, uri)
		done <- parseResult{docs: docs, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("pdf parse stopped: %w", ctx.Err())
	case r := <-done:
		return r.docs, r.err
	}
}

func (i *Ingestor) parsePages(ctx context.Context, data []byte, uri string) (docs []*schema.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("pdf parser panicked: %v", r)
		}
	}()

	docs, err = i.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(map[string]any{
			"source": uri,
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("parser returned no pages")
	}

	return docs, nil
}
