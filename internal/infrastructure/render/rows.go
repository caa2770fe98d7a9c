package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/quotemint/backend/internal/domain/billing"
)

// Row fragment templates. All free text passes through html/template
// escaping; no raw user text ever reaches the output markup.
var (
	itemRowTmpl = template.Must(template.New("item_row").Parse(`<tr>
    <td><p class="item-description">{{.Index}}. {{.Description}}</p></td>
    <td class="text-center">{{.HSN}}</td>
    <td class="text-center">{{.Period}}</td>
    <td class="text-center">{{.Rate}}</td>
    <td class="text-right">{{.Amount}}</td>
</tr>`))

	subtotalRowTmpl = template.Must(template.New("subtotal_row").Parse(`<tr class="total-row-subtotal">
    <td colspan="3"></td>
    <td class="text-center total-heading">Sub Total</td>
    <td class="text-right total-heading">{{.Amount}}</td>
</tr>`))

	taxRowTmpl = template.Must(template.New("tax_row").Parse(`<tr class="total-row-tax">
    <td colspan="3"></td>
    <td class="text-center tax-label">{{.Label}}</td>
    <td class="text-right tax-label">{{.Amount}}</td>
</tr>`))

	spacerRowTmpl = template.Must(template.New("spacer_row").Parse(`<tr class="total-row-spacer">
    <td colspan="5"></td>
</tr>`))

	grandTotalRowTmpl = template.Must(template.New("grand_total_row").Parse(`<tr class="total-row-final">
    <td class="grand-total">Total ({{.Phrase}})</td>
    <td class="text-center"></td>
    <td class="text-center"></td>
    <td class="text-center"></td>
    <td class="text-right grand-total">{{.Amount}}</td>
</tr>`))
)

// RenderedRows is the ordered sequence of rendered row fragments for
// one document: one fragment per line item, followed by the computed
// subtotal/tax/grand-total fragments.
type RenderedRows struct {
	Items     []template.HTML
	Totals    []template.HTML
	Breakdown *TaxBreakdown
}

type itemRowData struct {
	Index       int
	Description string
	HSN         string
	Period      template.HTML
	Rate        string
	Amount      string
}

// RenderRows renders each line item of the record, in order, into an
// escaped row fragment, then appends the subtotal row, the tax line
// rows, a spacer, and the grand-total row labeled with the currency's
// descriptive phrase.
func RenderRows(record *billing.BillingRecord) (*RenderedRows, error) {
	subtotal := record.Subtotal()
	breakdown, err := ComputeTax(subtotal, record.Currency, record.Regime, record.CGSTRate, record.SGSTRate, record.IGSTRate)
	if err != nil {
		return nil, err
	}

	rows := &RenderedRows{
		Items:     make([]template.HTML, 0, len(record.Items)),
		Breakdown: breakdown,
	}

	for i, item := range record.Items {
		fragment, err := renderFragment(itemRowTmpl, itemRowData{
			Index:       i + 1,
			Description: item.Description,
			HSN:         item.HSNCode,
			Period:      periodCell(item.Period),
			Rate:        item.RateLabel,
			Amount:      FormatAmount(item.Amount, record.Currency),
		})
		if err != nil {
			return nil, err
		}
		rows.Items = append(rows.Items, fragment)
	}

	subtotalRow, err := renderFragment(subtotalRowTmpl, map[string]string{
		"Amount": FormatAmount(subtotal, record.Currency),
	})
	if err != nil {
		return nil, err
	}
	rows.Totals = append(rows.Totals, subtotalRow)

	for _, line := range breakdown.Lines {
		taxRow, err := renderFragment(taxRowTmpl, map[string]string{
			"Label":  line.Label,
			"Amount": FormatAmount(line.Amount, record.Currency),
		})
		if err != nil {
			return nil, err
		}
		rows.Totals = append(rows.Totals, taxRow)
	}

	spacerRow, err := renderFragment(spacerRowTmpl, nil)
	if err != nil {
		return nil, err
	}
	rows.Totals = append(rows.Totals, spacerRow)

	grandRow, err := renderFragment(grandTotalRowTmpl, map[string]string{
		"Phrase": CurrencyPhrase(record.Currency),
		"Amount": FormatAmount(breakdown.GrandTotal, record.Currency),
	})
	if err != nil {
		return nil, err
	}
	rows.Totals = append(rows.Totals, grandRow)

	return rows, nil
}

// periodCell escapes the period label, then turns each space into a
// line break. Multi-month labels stack vertically in the narrow
// period column; this is a layout convention, not a generic transform.
func periodCell(period string) template.HTML {
	if period == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(period)
	return template.HTML(strings.ReplaceAll(escaped, " ", "<br>"))
}

func renderFragment(tmpl *template.Template, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
