package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"text/template/parse"

	"github.com/quotemint/backend/internal/domain/billing"
)

//go:embed templates/*.html
var templateFS embed.FS

// documentTemplates maps each document kind to its layout file within templateFS.
var documentTemplates = map[billing.DocKind]string{
	billing.DocKindQuotation: "templates/quotation.html",
	billing.DocKindInvoice:   "templates/invoice.html",
}

// requiredSlots lists the data bindings every layout must reference at least
// once. A layout that drops one would silently produce documents with missing
// numbers or amounts, so the composer refuses to load it.
var requiredSlots = map[billing.DocKind][]string{
	billing.DocKindQuotation: {"Title", "NumberLabel", "Number", "DateFormatted", "ClientName", "AddressLines", "CurrencyHeader", "Pages"},
	billing.DocKindInvoice:   {"Title", "NumberLabel", "Number", "DateFormatted", "ClientName", "AddressLines", "CurrencyHeader", "Pages", "Payment"},
}

// ComposeData is the binding context handed to a document layout.
type ComposeData struct {
	Title         string
	NumberLabel   string
	Number        string
	DateFormatted string
	ClientName    string
	AddressLines  []string
	CurrencyHeader string
	Pages         []Page
	AssetBase     template.URL
	Payment       billing.PaymentProfile
}

// DocumentComposer renders a complete HTML document from a billing record and
// its paginated rows. Layouts are parsed once at construction and reused, so
// composing the same record twice yields byte-identical output.
type DocumentComposer struct {
	templates map[billing.DocKind]*template.Template
	assetBase template.URL
}

// NewDocumentComposer parses the embedded layouts and verifies that each one
// binds its required slots. assetDir points at static assets (the logo); it is
// resolved to an absolute file URL so headless Chrome can load it.
func NewDocumentComposer(assetDir string) (*DocumentComposer, error) {
	base, err := resolveAssetBase(assetDir)
	if err != nil {
		return nil, err
	}

	c := &DocumentComposer{
		templates: make(map[billing.DocKind]*template.Template, len(documentTemplates)),
		assetBase: base,
	}
	for kind, path := range documentTemplates {
		raw, err := templateFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read layout %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", path, err)
		}
		if err := verifySlots(tmpl, requiredSlots[kind]); err != nil {
			return nil, err
		}
		c.templates[kind] = tmpl
	}
	return c, nil
}

// Compose renders the full document HTML for a record and its pages.
func (c *DocumentComposer) Compose(record *billing.BillingRecord, pages []Page) (string, error) {
	tmpl, ok := c.templates[record.Kind]
	if !ok {
		return "", NewValidationError("kind", fmt.Sprintf("no layout for document kind %q", record.Kind))
	}

	data := ComposeData{
		Title:          record.Kind.Title(),
		NumberLabel:    record.Kind.Label(),
		Number:         record.Number,
		DateFormatted:  record.IssueDate.Format("02-Jan-2006"),
		ClientName:     record.RecipientName(),
		AddressLines:   record.AddressLines(),
		CurrencyHeader: AmountHeader(record.Currency),
		Pages:          pages,
		AssetBase:      c.assetBase,
		Payment:        record.Payment,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute layout %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// resolveAssetBase turns an asset directory into an absolute file:// URL.
func resolveAssetBase(assetDir string) (template.URL, error) {
	if assetDir == "" {
		return "", NewValidationError("asset_dir", "asset directory is required")
	}
	abs, err := filepath.Abs(assetDir)
	if err != nil {
		return "", fmt.Errorf("resolve asset dir %s: %w", assetDir, err)
	}
	return template.URL("file://" + filepath.ToSlash(abs)), nil
}

// verifySlots walks the parsed template tree and checks that every required
// top-level field is referenced somewhere in the layout.
func verifySlots(tmpl *template.Template, slots []string) error {
	seen := make(map[string]bool)
	for _, t := range tmpl.Templates() {
		if t.Tree != nil && t.Tree.Root != nil {
			collectFields(t.Tree.Root, seen)
		}
	}
	for _, slot := range slots {
		if !seen[slot] {
			return NewTemplateError(tmpl.Name(), slot)
		}
	}
	return nil
}

func collectFields(node parse.Node, seen map[string]bool) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *parse.ListNode:
		for _, child := range n.Nodes {
			collectFields(child, seen)
		}
	case *parse.ActionNode:
		collectFields(n.Pipe, seen)
	case *parse.IfNode:
		collectFields(n.Pipe, seen)
		collectFields(n.List, seen)
		if n.ElseList != nil {
			collectFields(n.ElseList, seen)
		}
	case *parse.RangeNode:
		collectFields(n.Pipe, seen)
		collectFields(n.List, seen)
		if n.ElseList != nil {
			collectFields(n.ElseList, seen)
		}
	case *parse.WithNode:
		collectFields(n.Pipe, seen)
		collectFields(n.List, seen)
		if n.ElseList != nil {
			collectFields(n.ElseList, seen)
		}
	case *parse.PipeNode:
		for _, cmd := range n.Cmds {
			for _, arg := range cmd.Args {
				collectFields(arg, seen)
			}
		}
	case *parse.FieldNode:
		if len(n.Ident) > 0 {
			seen[n.Ident[0]] = true
		}
	case *parse.VariableNode:
		// $.Field references inside range blocks.
		if len(n.Ident) > 1 && n.Ident[0] == "$" {
			seen[n.Ident[1]] = true
		}
	case *parse.TemplateNode:
		collectFields(n.Pipe, seen)
	}
}
