// Package intake turns email metadata into intake task documents. It
// writes through the task store only; fetching mail is an external
// watcher's job.
package intake

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/phrazzld/vault-agent/internal/domain"
	"github.com/phrazzld/vault-agent/internal/store"
)

// Sender address domains used as a classification hint. Mail from a
// known provider domain is presumed personal; corporate domains are
// presumed business. The hint is advisory: the content classifier has
// the final word once the task is processed.
var (
	personalDomains = map[string]struct{}{
		"gmail.com":   {},
		"yahoo.com":   {},
		"hotmail.com": {},
		"outlook.com": {},
		"icloud.com":  {},
	}

	businessDomains = map[string]struct{}{
		"google.com":    {},
		"github.com":    {},
		"microsoft.com": {},
		"azure.com":     {},
		"slack.com":     {},
	}
)

var addressDomainPattern = regexp.MustCompile(`@([\w.-]+)`)

// Email holds the metadata extracted from one message.
type Email struct {
	Sender    string
	Subject   string
	Date      string
	Snippet   string
	MessageID string
}

// Header is one name/value pair from a message header list.
type Header struct {
	Name  string
	Value string
}

// ParseHeaders extracts the headers relevant to task creation,
// lowercasing names. Unrecognized headers are dropped.
func ParseHeaders(headers []Header) map[string]string {
	result := make(map[string]string)
	for _, h := range headers {
		switch name := strings.ToLower(h.Name); name {
		case "from", "to", "subject", "date":
			result[name] = h.Value
		}
	}
	return result
}

// ClassifySender classifies an email address as personal or business
// by its domain. Unparseable addresses default to personal.
func ClassifySender(addr string) domain.Domain {
	m := addressDomainPattern.FindStringSubmatch(addr)
	if m == nil {
		return domain.DomainPersonal
	}
	d := strings.ToLower(m[1])

	for known := range businessDomains {
		if d == known || strings.HasSuffix(d, "."+known) {
			return domain.DomainBusiness
		}
	}
	if _, ok := personalDomains[d]; ok {
		return domain.DomainPersonal
	}
	return domain.DomainPersonal
}

// TaskID derives the intake record identifier for this message.
func (e Email) TaskID(now time.Time) string {
	return fmt.Sprintf("email_%s_%s", now.UTC().Format("20060102_150405"), e.MessageID)
}

// Document renders the intake task document for this message. The
// header block carries the read-only classification inputs.
func (e Email) Document() string {
	var b strings.Builder
	b.WriteString("# Email Task\n\n")
	fmt.Fprintf(&b, "From: %s\n", e.Sender)
	fmt.Fprintf(&b, "Subject: %s\n", e.Subject)
	fmt.Fprintf(&b, "Date: %s\n", e.Date)
	fmt.Fprintf(&b, "Domain: %s\n", ClassifySender(e.Sender))
	fmt.Fprintf(&b, "MessageID: %s\n\n", e.MessageID)
	b.WriteString("## Content\n")
	b.WriteString(e.Snippet)
	b.WriteString("\n\nSource: email\nStatus: New\n")
	return b.String()
}

// CreateTask writes the message's task document into Intake and
// returns its ref.
func CreateTask(ctx context.Context, tasks store.TaskStore, e Email, now time.Time) (store.TaskRef, error) {
	ref := store.TaskRef{State: domain.TaskStateIntake, ID: e.TaskID(now)}
	if err := tasks.Write(ctx, ref, e.Document()); err != nil {
		return store.TaskRef{}, fmt.Errorf("creating intake task: %w", err)
	}
	return ref, nil
}

// DraftReply renders a reply template acknowledging a processed task.
func DraftReply(subject, summary string) string {
	return fmt.Sprintf(
		"Subject: Re: %s\n\n"+
			"Thank you for your message regarding: %s\n\n"+
			"Summary of action taken:\n%s\n\n"+
			"Best regards,\nVault Agent\n",
		subject, subject, summary)
}
