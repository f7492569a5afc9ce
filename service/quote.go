package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FirstLeaseAgent/template-pdf/model"
	"github.com/FirstLeaseAgent/template-pdf/pkg/docx"
	"github.com/FirstLeaseAgent/template-pdf/pkg/logger"
)

// aliases maps derived field keys to the token names the templates actually
// use, for the eight fields where the two differ.
var aliases = map[string]string{
	"rentaendeposito":     "deposito",
	"rentamensual":        "mensualidad",
	"ivarentamensual":     "IVAmes",
	"subtotalpagoinicial": "subinicial",
	"ivapagoinicial":      "IVAinicial",
	"ivaresidual":         "IVAresidual",
	"reembolsodeposito":   "reembolso",
	"totalrentamensual":   "totalmes",
}

// TokenFor derives the template token for a result field under a scenario:
// lowercase the field name, strip underscores, apply the alias table, append
// the term as suffix. Alias casing (IVAmes etc.) is used verbatim; matching
// stays case-sensitive end to end.
func TokenFor(field string, termMonths int) string {
	key := strings.ToLower(strings.ReplaceAll(field, "_", ""))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	return fmt.Sprintf("%s%d", key, termMonths)
}

// FormatMoney renders a figure with thousands separators and two decimals,
// e.g. 3297.09 -> "3,297.09".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	b.WriteString(sign)
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(',')
		}
	}
	b.WriteString(frac)
	return b.String()
}

// NewFolio builds the identifier that names one quotation's output pair. The
// timestamp keeps folios sortable; the random suffix keeps two requests in
// the same second from colliding on filenames.
func NewFolio(t time.Time) string {
	return fmt.Sprintf("%s_%s", t.Format("20060102_150405"), uuid.New().String()[:8])
}

// BuildValues assembles the flat token-to-display-string mapping for one
// asset: the fourteen figures of each catalog scenario under their suffixed
// tokens, plus the per-asset tokens set once (nombre, descripcion, precio,
// fecha, folio). It also returns the raw results for the response payload.
func BuildValues(asset model.Asset, folio string, now time.Time) (map[string]string, []model.ScenarioResult) {
	values := map[string]string{
		"nombre":      asset.Nombre,
		"descripcion": asset.Descripcion,
		"precio":      FormatMoney(asset.Precio),
		"fecha":       now.Format("02/01/2006"),
		"folio":       folio,
	}

	results := make([]model.ScenarioResult, 0, len(model.Scenarios))
	for _, sc := range model.Scenarios {
		res := Calculate(asset, sc)
		for _, f := range res.Fields() {
			values[TokenFor(f.Name, sc.TermMonths)] = FormatMoney(f.Value)
		}
		results = append(results, model.ScenarioResult{
			TermMonths:  sc.TermMonths,
			ResidualPct: sc.ResidualPct,
			Result:      res,
		})
	}
	return values, results
}

// QuoteService runs the full generation pipeline: compute, fill, save,
// convert, archive.
type QuoteService struct {
	outputDir string
	fillOpts  FillOptions
	converter *Converter
	archive   *ArchiveService // nil when archiving is disabled
}

func NewQuoteService(outputDir string, fillOpts FillOptions, converter *Converter, archive *ArchiveService) *QuoteService {
	return &QuoteService{
		outputDir: outputDir,
		fillOpts:  fillOpts,
		converter: converter,
		archive:   archive,
	}
}

// Generate produces one Word/PDF pair per asset from the template at
// templatePath. A failed PDF conversion is recorded on the affected quote and
// generation continues; any other failure aborts the request.
func (s *QuoteService) Generate(ctx context.Context, templatePath string, assets []model.Asset) ([]model.AssetQuote, error) {
	quotes := make([]model.AssetQuote, 0, len(assets))
	for _, asset := range assets {
		now := time.Now()
		folio := NewFolio(now)
		qctx := context.WithValue(ctx, logger.FolioKey, folio)

		values, results := BuildValues(asset, folio, now)

		doc, err := openTemplate(templatePath)
		if err != nil {
			return nil, err
		}
		if err := Fill(doc, values, s.fillOpts); err != nil {
			return nil, err
		}

		wordName := fmt.Sprintf("cotizacion_%s.docx", folio)
		wordPath := filepath.Join(s.outputDir, wordName)
		if err := doc.Save(wordPath); err != nil {
			return nil, fmt.Errorf("failed to save document: %w", err)
		}
		logger.Info(qctx, "quotation document saved", "file", wordName, "asset", asset.Nombre)

		quote := model.AssetQuote{
			Nombre:    asset.Nombre,
			Folio:     folio,
			WordFile:  wordName,
			Scenarios: results,
		}

		pdfPath, err := s.converter.Convert(qctx, wordPath, s.outputDir)
		if err != nil {
			// Recoverable: the Word artifact stands on its own.
			logger.Warn(qctx, "pdf conversion failed, returning word document only", "error", err)
			quote.PDFError = err.Error()
		} else {
			quote.PDFFile = filepath.Base(pdfPath)
		}

		if s.archive != nil {
			s.archiveQuote(qctx, &quote, wordPath, pdfPath)
		}

		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// archiveQuote uploads the generated pair to object storage. Best effort: a
// failed upload is logged, the local files still serve downloads.
func (s *QuoteService) archiveQuote(ctx context.Context, quote *model.AssetQuote, wordPath, pdfPath string) {
	wordURL, err := s.archive.Store(ctx, quote.Folio, wordPath)
	if err != nil {
		logger.Warn(ctx, "failed to archive word document", "error", err)
		return
	}
	quote.WordURL = wordURL
	quote.Archived = true

	if quote.PDFFile != "" {
		pdfURL, err := s.archive.Store(ctx, quote.Folio, pdfPath)
		if err != nil {
			logger.Warn(ctx, "failed to archive pdf document", "error", err)
			return
		}
		quote.PDFURL = pdfURL
	}
}

// openTemplate loads the template, mapping open failures onto the error
// taxonomy the handlers translate to HTTP statuses.
func openTemplate(path string) (*docx.Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrTemplateNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("%w: %v", model.ErrTemplateUnreadable, err)
	}
	doc, err := docx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTemplateUnreadable, err)
	}
	return doc, nil
}
