package submit

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/timesheet/internal/model"
)

func TestWeeklyDraftEncodes(t *testing.T) {
	day := time.Date(2024, 3, 6, 17, 0, 0, 0, time.UTC)
	logs := []model.TimeLogEntry{
		{
			ID: "a", ProjectID: "1", SubprojectID: "1-1",
			ProjectName: "Website Redesign", SubprojectName: "Wireframing",
			Duration: 5400, Description: "draft review", Date: "2024-03-04",
			StartTime: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: "b", ProjectID: "1", SubprojectID: "1-1",
			ProjectName: "Website Redesign", SubprojectName: "Wireframing",
			Duration: 3600, Date: "2024-02-26",
		},
	}

	d := WeeklyDraft(logs, day, "Me <me@example.com>", "boss@example.com")
	assert.Equal(t, "Timesheet 2024-03-04", d.Subject)
	assert.Contains(t, d.Body, "Total: 1.5 hours")
	assert.Contains(t, d.Body, "draft review")
	assert.NotContains(t, d.Body, "2024-02-26")

	raw, err := d.Bytes()
	require.NoError(t, err)

	r, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)
	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, d.Subject, subject)

	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "boss@example.com", to[0].Address)

	part, err := r.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Website Redesign")
}

func TestDraftRejectsBadAddress(t *testing.T) {
	d := Draft{From: "not an address", Subject: "x", Date: time.Now()}
	_, err := d.Bytes()
	assert.Error(t, err)
}

func TestNewSubmitterRequiresConfig(t *testing.T) {
	_, err := NewSubmitter(model.SubmitConfig{}, "pw")
	assert.ErrorIs(t, err, ErrNotConfigured)

	s, err := NewSubmitter(model.SubmitConfig{IMAPHost: "imap.example.com", Username: "me"}, "pw")
	require.NoError(t, err)
	assert.Equal(t, "993", s.cfg.IMAPPort)
	assert.Equal(t, "Drafts", s.cfg.Mailbox)
}

func TestSubmitHonoursContextDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	// Accept connections and never greet.
	conns := make(chan net.Conn, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns <- conn
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		for {
			select {
			case conn := <-conns:
				_ = conn.Close()
			default:
				return
			}
		}
	})

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	s, err := NewSubmitter(model.SubmitConfig{IMAPHost: host, IMAPPort: port, Username: "me"}, "pw")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	begin := time.Now()
	_, err = s.Submit(ctx, WeeklyDraft(nil, time.Now(), "me@example.com", "boss@example.com"))
	assert.Error(t, err)
	assert.Less(t, time.Since(begin), 5*time.Second)
}
