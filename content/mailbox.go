package content

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/pterm/pterm"
)

// Mailbox describes an IMAP inbox that holds extra prompts, one per message.
// Messages are matched by Subject; the rest of the subject names the prompt
// and the plain-text body is the prompt itself.
type Mailbox struct {
	Server   string // host, optionally with port
	Username string
	Password string
	Subject  string
	TLS      bool
}

// Enabled reports whether enough is configured to try the mailbox.
func (m Mailbox) Enabled() bool {
	return m.Server != "" && m.Username != "" && m.Subject != ""
}

func (m Mailbox) addr() string {
	if strings.Contains(m.Server, ":") {
		return m.Server
	}
	if m.TLS {
		return m.Server + ":993"
	}
	return m.Server + ":143"
}

// FetchMailboxPrompts logs into the mailbox and returns a work item for every
// INBOX message whose subject contains m.Subject, oldest first. Messages are
// read with PEEK so they stay unread.
func FetchMailboxPrompts(m Mailbox, log *pterm.Logger) (Batch, error) {
	var c *client.Client
	var err error

	//* Connect to the server with or without TLS
	if m.TLS {
		c, err = client.DialTLS(m.addr(), nil)
	} else {
		c, err = client.Dial(m.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(m.Username, m.Password); err != nil {
		return nil, fmt.Errorf("log into IMAP server: %w", err)
	}
	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("select INBOX: %w", err)
	}

	//* Search for prompt messages
	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("Subject", m.Subject)
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search emails: %w", err)
	}
	if len(ids) == 0 {
		log.Info("no prompt emails found", log.Args("subject", m.Subject))
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(ids...)

	section := imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.TextSpecifier},
		Peek:         true,
	}
	messages := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}, messages)
	}()

	var batch Batch
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		r := msg.GetBody(&section)
		if r == nil {
			log.Warn("prompt email has no body", log.Args("subject", msg.Envelope.Subject))
			continue
		}
		body, err := io.ReadAll(r)
		if err != nil {
			log.Warn("could not read prompt email", log.Args("subject", msg.Envelope.Subject, "error", err))
			continue
		}
		if item, ok := promptFromMessage(m.Subject, msg.Envelope.Subject, string(body)); ok {
			batch = append(batch, item)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch emails: %w", err)
	}

	log.Info("loaded prompts from mailbox", log.Args("count", len(batch)))
	return batch, nil
}

// promptFromMessage turns one email into a work item. The subject minus the
// search marker becomes the name; an empty body yields nothing.
func promptFromMessage(marker, subject, body string) (WorkItem, bool) {
	prompt := strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))
	if prompt == "" {
		return WorkItem{}, false
	}
	name := strings.TrimSpace(strings.Replace(subject, marker, "", 1))
	name = strings.TrimLeft(name, ":-– ")
	if name == "" {
		name = subject
	}
	return WorkItem{Name: name, Description: "from mailbox", Prompt: prompt}, true
}
