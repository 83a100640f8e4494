package receipt

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/pkg/errors"

	"restaurant-pos/models"
	"restaurant-pos/utils"
)

//go:embed templates/receipt.html
var receiptTemplate string

var htmlTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"inr": utils.FormatINR,
}).Parse(receiptTemplate))

type htmlLine struct {
	models.OrderLine
	Amount string
}

// RenderHTML renders the receipt as a standalone HTML page for PDF printing.
func RenderHTML(order *models.Order) (string, error) {
	lines := make([]htmlLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, htmlLine{OrderLine: l, Amount: utils.FormatINR(l.LineTotal())})
	}

	data := struct {
		Header []string
		Order  *models.Order
		Lines  []htmlLine
	}{
		Header: Header(order.ID, order.CreatedAt),
		Order:  order,
		Lines:  lines,
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to execute receipt template")
	}
	return buf.String(), nil
}
