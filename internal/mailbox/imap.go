package mailbox

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/openclaw/rolodex/internal/crm"
)

// IMAPSource fetches envelopes straight from an IMAP server. Only
// ENVELOPE metadata is requested; bodies are never downloaded.
type IMAPSource struct {
	name     string
	server   string
	username string
	password string
	folder   string
}

// NewIMAPSource builds an IMAP source. The password comes from the
// ROLODEX_IMAP_PASSWORD environment variable unless set in options.
func NewIMAPSource(name string, opts map[string]interface{}) (*IMAPSource, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("adapter instance name is required for imap source")
	}
	server := getStringOption(opts, "server", "")
	if server == "" {
		return nil, fmt.Errorf("imap source requires a server option (host:port)")
	}
	username := getStringOption(opts, "username", "")
	if username == "" {
		return nil, fmt.Errorf("imap source requires a username option")
	}
	password := getStringOption(opts, "password", os.Getenv("ROLODEX_IMAP_PASSWORD"))
	if password == "" {
		return nil, fmt.Errorf("imap password not set (ROLODEX_IMAP_PASSWORD)")
	}
	return &IMAPSource{
		name:     name,
		server:   server,
		username: username,
		password: password,
		folder:   getStringOption(opts, "folder", "INBOX"),
	}, nil
}

func (s *IMAPSource) Name() string { return s.name }

// Fetch logs in over TLS, searches the folder for messages since the
// cutoff, and fetches their envelopes.
func (s *IMAPSource) Fetch(ctx context.Context, since time.Time) ([]crm.Envelope, error) {
	c, err := client.DialTLS(s.server, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", s.server, err)
	}
	defer c.Logout()

	if err := c.Login(s.username, s.password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select(s.folder, true); err != nil {
		return nil, fmt.Errorf("imap select %s: %w", s.folder, err)
	}

	criteria := imap.NewSearchCriteria()
	if !since.IsZero() {
		criteria.Since = since
	}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate}, messages)
	}()

	var envelopes []crm.Envelope
	for msg := range messages {
		if ctx.Err() != nil {
			break
		}
		env := msg.Envelope
		if env == nil {
			continue
		}
		when := env.Date
		if when.IsZero() {
			when = msg.InternalDate
		}
		envelopes = append(envelopes, crm.Envelope{
			From:    firstAddress(env.From),
			To:      firstAddress(env.To),
			Subject: env.Subject,
			Date:    when.UTC().Format("2006-01-02 15:04:05"),
			Source:  s.name,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return envelopes, nil
}

func firstAddress(addrs []*imap.Address) crm.Address {
	for _, a := range addrs {
		if a == nil || a.MailboxName == "" || a.HostName == "" {
			continue
		}
		return crm.Address{
			Name: a.PersonalName,
			Addr: strings.ToLower(a.MailboxName + "@" + a.HostName),
		}
	}
	return crm.Address{}
}
