package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"
)

// Client fetches unread mail from one IMAP account over TLS.
type Client struct {
	addr     string
	username string
	password string
	account  string
	log      *zap.Logger

	conn *imapclient.Client
}

func NewClient(addr, username, password, account string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if account == "" {
		account = username
	}
	return &Client{
		addr:     addr,
		username: username,
		password: password,
		account:  account,
		log:      log,
	}
}

// Connect dials the server, logs in, and selects INBOX.
func (c *Client) Connect(ctx context.Context) error {
	if c.addr == "" {
		return errors.New("imap addr is required")
	}
	if c.username == "" || c.password == "" {
		return errors.New("imap username/password is required")
	}

	conn, err := imapclient.DialTLS(c.addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	})
	if err != nil {
		return fmt.Errorf("imap dial tls: %w", err)
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if err := conn.Login(c.username, c.password).Wait(); err != nil {
		_ = conn.Close()
		return fmt.Errorf("imap login: %w", err)
	}

	if _, err := conn.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		_ = conn.Close()
		return fmt.Errorf("imap select inbox: %w", err)
	}

	c.conn = conn
	return nil
}

// FetchUnseen pulls up to max unseen messages newer than the cutoff,
// newest first, using BODY.PEEK[] so nothing gets marked \Seen.
func (c *Client) FetchUnseen(ctx context.Context, cutoff time.Time, max int) ([]*Message, error) {
	if c.conn == nil {
		return nil, errors.New("imap client is not connected")
	}
	if max <= 0 {
		max = 200
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   cutoff,
	}

	searchData, err := c.conn.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Newest first.
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > max {
		uids = uids[:max]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchOptions := &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodyAll},
	}

	fetchCmd := c.conn.Fetch(imap.UIDSetNum(uids...), fetchOptions)
	defer func() { _ = fetchCmd.Close() }()

	out := make([]*Message, 0, len(uids))
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}

		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		raw := buf.FindBodySection(bodyAll)
		if len(raw) == 0 {
			c.log.Warn("empty message body, skipping", zap.Uint32("uid", uint32(buf.UID)))
			continue
		}

		msg, err := Parse(raw)
		if err != nil {
			// One unparsable message should not abort the run.
			c.log.Warn("failed to parse message, skipping",
				zap.Uint32("uid", uint32(buf.UID)), zap.Error(err))
			continue
		}

		msg.UID = fmt.Sprintf("%s:%d", c.account, buf.UID)
		msg.Account = c.account
		if buf.Envelope != nil {
			if msg.Subject == "" {
				msg.Subject = buf.Envelope.Subject
			}
			if msg.Date.IsZero() {
				msg.Date = buf.Envelope.Date
			}
		}
		if msg.Date.IsZero() {
			msg.Date = buf.InternalDate
		}
		msg.PDFDeadlines = ExtractPDFDeadlines(msg.Attachments)

		out = append(out, msg)
	}

	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}

	return out, nil
}

// Close logs out and closes the connection.
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Logout().Wait(); err != nil {
		c.log.Debug("imap logout", zap.Error(err))
	}
	_ = c.conn.Close()
	c.conn = nil
}
