package submit

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/timesheet/internal/model"
)

// ErrNotConfigured is returned when the IMAP host or user is missing.
var ErrNotConfigured = errors.New("submission mailbox is not configured")

// Result describes an appended draft.
type Result struct {
	Mailbox string
	UID     imap.UID
	Size    int
}

// Submitter appends drafts to an IMAP mailbox.
type Submitter struct {
	cfg      model.SubmitConfig
	password string
}

// NewSubmitter returns a Submitter for cfg, authenticating with password.
func NewSubmitter(cfg model.SubmitConfig, password string) (*Submitter, error) {
	if cfg.IMAPHost == "" || cfg.Username == "" {
		return nil, ErrNotConfigured
	}
	if cfg.IMAPPort == "" {
		cfg.IMAPPort = "993"
	}
	if cfg.Mailbox == "" {
		cfg.Mailbox = "Drafts"
	}
	return &Submitter{cfg: cfg, password: password}, nil
}

// connect dials and authenticates. Cancelling ctx closes the connection,
// which aborts any command in flight. The caller must log out and then
// call release.
func (s *Submitter) connect(ctx context.Context) (*imapclient.Client, func(), error) {
	addr := net.JoinHostPort(s.cfg.IMAPHost, s.cfg.IMAPPort)
	tlsConfig := &tls.Config{ServerName: s.cfg.IMAPHost}

	var conn net.Conn
	var err error
	if s.cfg.TLS {
		d := &tls.Dialer{Config: tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}
	release := context.AfterFunc(ctx, func() { _ = conn.Close() })

	var client *imapclient.Client
	if s.cfg.TLS {
		client = imapclient.New(conn, nil)
	} else {
		client, err = imapclient.NewStartTLS(conn, &imapclient.Options{TLSConfig: tlsConfig})
		if err != nil {
			release()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("starting TLS with %s: %w", addr, err)
		}
	}

	if err := client.Login(s.cfg.Username, s.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		_ = client.Close()
		release()
		return nil, nil, fmt.Errorf("authentication failed for %s: %w", s.cfg.Username, err)
	}

	return client, func() { release() }, nil
}

// Submit appends d to the configured mailbox with the \Draft flag.
func (s *Submitter) Submit(ctx context.Context, d Draft) (Result, error) {
	raw, err := d.Bytes()
	if err != nil {
		return Result{}, err
	}

	client, release, err := s.connect(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = client.Logout().Wait()
		release()
	}()

	cmd := client.Append(s.cfg.Mailbox, int64(len(raw)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagDraft, imap.FlagSeen},
		Time:  d.Date,
	})
	if _, err := cmd.Write(raw); err != nil {
		return Result{}, fmt.Errorf("writing draft: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return Result{}, fmt.Errorf("closing draft: %w", err)
	}
	data, err := cmd.Wait()
	if err != nil {
		return Result{}, fmt.Errorf("appending draft to %s: %w", s.cfg.Mailbox, err)
	}

	return Result{Mailbox: s.cfg.Mailbox, UID: data.UID, Size: len(raw)}, nil
}

// Week builds the weekly draft for day from logs and appends it to the
// mailbox described by cfg.
func Week(ctx context.Context, cfg model.SubmitConfig, password string, logs []model.TimeLogEntry, day time.Time) (Result, error) {
	s, err := NewSubmitter(cfg, password)
	if err != nil {
		return Result{}, err
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return s.Submit(ctx, WeeklyDraft(logs, day, from, cfg.To))
}
