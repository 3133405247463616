// Package submit sends the weekly timesheet as a draft email to an IMAP
// mailbox, where it can be reviewed and sent from any mail client.
package submit

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/timesheet/internal/model"
	"github.com/nhle/timesheet/internal/report"
)

// Draft is a plain-text timesheet message.
type Draft struct {
	From    string
	To      string
	Subject string
	Date    time.Time
	Body    string
}

// WeeklyDraft builds the draft for the Monday to Friday week containing day.
func WeeklyDraft(logs []model.TimeLogEntry, day time.Time, from, to string) Draft {
	sheet := report.Weekly(logs, day)

	var b strings.Builder
	fmt.Fprintf(&b, "Timesheet for the week of %s to %s\n\n", sheet.Days[0], sheet.Days[len(sheet.Days)-1])
	b.WriteString(report.Table(sheet))
	fmt.Fprintf(&b, "\n\nTotal: %s hours\n", report.Hours(sheet.Total))

	entries := weekEntries(logs, sheet.Days)
	if len(entries) > 0 {
		b.WriteString("\nEntries:\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "  %s  %s / %s  %s", e.Date, e.ProjectName, e.SubprojectName, report.Clock(e.Duration))
			if e.Description != "" {
				fmt.Fprintf(&b, "  %s", e.Description)
			}
			b.WriteString("\n")
		}
	}

	return Draft{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("Timesheet %s", sheet.Days[0]),
		Date:    day,
		Body:    b.String(),
	}
}

func weekEntries(logs []model.TimeLogEntry, days []string) []model.TimeLogEntry {
	in := make(map[string]bool, len(days))
	for _, d := range days {
		in[d] = true
	}
	var out []model.TimeLogEntry
	for _, e := range logs {
		if in[e.Date] {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// WriteTo encodes the draft as an RFC 5322 message.
func (d Draft) WriteTo(w io.Writer) (int64, error) {
	var h mail.Header
	h.SetDate(d.Date)
	h.SetSubject(d.Subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	if d.From != "" {
		from, err := mail.ParseAddressList(d.From)
		if err != nil {
			return 0, fmt.Errorf("parsing from address: %w", err)
		}
		h.SetAddressList("From", from)
	}
	if d.To != "" {
		to, err := mail.ParseAddressList(d.To)
		if err != nil {
			return 0, fmt.Errorf("parsing to address: %w", err)
		}
		h.SetAddressList("To", to)
	}

	cw := &countingWriter{w: w}
	body, err := mail.CreateSingleInlineWriter(cw, h)
	if err != nil {
		return cw.n, fmt.Errorf("writing message header: %w", err)
	}
	if _, err := io.WriteString(body, d.Body); err != nil {
		return cw.n, fmt.Errorf("writing message body: %w", err)
	}
	if err := body.Close(); err != nil {
		return cw.n, fmt.Errorf("closing message: %w", err)
	}
	return cw.n, nil
}

// Bytes returns the encoded message.
func (d Draft) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
