package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/salesboard/internal/salesreport"
)

// PDFExporter renders the board through Gotenberg's HTML conversion endpoint.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// Ping checks that Gotenberg answers its health endpoint.
func (p *PDFExporter) Ping(ctx context.Context) error {
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return fmt.Errorf("gotenberg endpoint required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.client().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *PDFExporter) client() *http.Client {
	if p.Client == nil {
		return http.DefaultClient
	}
	return p.Client
}

// RenderBoard sends the board tables as HTML to Gotenberg and returns the PDF bytes.
func (p *PDFExporter) RenderBoard(ctx context.Context, title string, view salesreport.BoardView) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, buildHTML(title, view)); err != nil {
		return nil, err
	}
	if err := writer.WriteField("landscape", "true"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}
	return io.ReadAll(resp.Body)
}

func buildHTML(title string, view salesreport.BoardView) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:6px;text-align:right;}th{background:#f5f5f5;}.label{text-align:left;}.category td{background:#fafafa;font-weight:bold;text-align:left;}")
	b.WriteString("</style></head><body>")
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(title))

	b.WriteString("<section><h2>Revenue by Order Type</h2><table><thead><tr><th class=\"label\">Order Type</th><th>Revenue</th></tr></thead><tbody>")
	for _, row := range view.Revenue {
		writeCells(&b, []string{row.OrderType}, formatFloat(row.Revenue))
	}
	b.WriteString("</tbody></table></section>")

	header := PivotHeader(view.OrderTypes)
	b.WriteString("<section><h2>Sales by Category</h2><table><thead><tr>")
	for i, h := range header[1:] {
		if i == 0 {
			fmt.Fprintf(&b, "<th class=\"label\">%s</th>", html.EscapeString(h))
			continue
		}
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr></thead><tbody>")
	for _, category := range view.Pivot.Categories() {
		fmt.Fprintf(&b, "<tr class=\"category\"><td colspan=\"%d\">%s</td></tr>", len(header)-1, html.EscapeString(category.Name))
		for _, food := range category.Foods {
			values := make([]string, 0, len(view.OrderTypes)*2+2)
			for _, ot := range view.OrderTypes {
				values = append(values, strconv.Itoa(food.ChannelQuantity(ot)), formatFloat(food.ChannelRevenue(ot)))
			}
			values = append(values, strconv.Itoa(salesreport.TotalQuantity(food)), formatFloat(food.TotalFoodRevenue))
			writeCells(&b, []string{food.FoodName}, values...)
		}
	}
	b.WriteString("</tbody></table></section>")
	b.WriteString("</body></html>")
	return b.String()
}

func writeCells(b *strings.Builder, labels []string, values ...string) {
	b.WriteString("<tr>")
	for _, l := range labels {
		fmt.Fprintf(b, "<td class=\"label\">%s</td>", html.EscapeString(l))
	}
	for _, v := range values {
		fmt.Fprintf(b, "<td>%s</td>", html.EscapeString(v))
	}
	b.WriteString("</tr>")
}
