package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// WriteSummaryCSV serialises the summary metrics followed by the best sellers.
func WriteSummaryCSV(w io.Writer, summary Summary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"From", formatBound(summary.From)},
		{"To", formatBound(summary.To)},
		{"Revenue", summary.Revenue.StringFixed(2)},
		{"Orders", strconv.Itoa(summary.OrderCount)},
		{"Average Ticket", summary.AverageTicket.StringFixed(2)},
		{"Expenses", summary.Expenses.StringFixed(2)},
		{"Net", summary.Net.StringFixed(2)},
		{"Credit Outstanding", summary.CreditOutstanding.StringFixed(2)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write(nil); err != nil {
		return err
	}
	if err := writer.Write([]string{"Rank", "Product", "Quantity"}); err != nil {
		return err
	}
	for i, p := range summary.TopProducts {
		if err := writer.Write([]string{strconv.Itoa(i + 1), p.Name, strconv.Itoa(p.Quantity)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Subject is the email subject for a summary.
func Subject(summary Summary) string {
	switch {
	case summary.From != nil && summary.To != nil:
		return fmt.Sprintf("Sales summary %s to %s", formatBound(summary.From), formatBound(summary.To))
	case summary.From != nil:
		return "Sales summary since " + formatBound(summary.From)
	case summary.To != nil:
		return "Sales summary until " + formatBound(summary.To)
	default:
		return "Sales summary"
	}
}

// PlainText renders the summary as a short text body.
func PlainText(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Revenue: %s\n", summary.Revenue.StringFixed(2))
	fmt.Fprintf(&b, "Orders: %d\n", summary.OrderCount)
	fmt.Fprintf(&b, "Average ticket: %s\n", summary.AverageTicket.StringFixed(2))
	fmt.Fprintf(&b, "Expenses: %s\n", summary.Expenses.StringFixed(2))
	fmt.Fprintf(&b, "Net: %s\n", summary.Net.StringFixed(2))
	fmt.Fprintf(&b, "Client credit: %s\n", summary.CreditOutstanding.StringFixed(2))
	if len(summary.TopProducts) > 0 {
		b.WriteString("\nTop products:\n")
		for i, p := range summary.TopProducts {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, p.Name, p.Quantity)
		}
	}
	return b.String()
}

// MailtoLink builds a mailto URL with percent-encoded subject and body.
func MailtoLink(to, subject, body string) string {
	link := "mailto:" + url.PathEscape(to)
	params := make([]string, 0, 2)
	if subject != "" {
		params = append(params, "subject="+escapeMailto(subject))
	}
	if body != "" {
		params = append(params, "body="+escapeMailto(body))
	}
	if len(params) > 0 {
		link += "?" + strings.Join(params, "&")
	}
	return link
}

// escapeMailto encodes spaces as %20; mail clients do not decode "+".
func escapeMailto(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
