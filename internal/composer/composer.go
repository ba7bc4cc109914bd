package composer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"ticketbot/internal/domain"
)

// Composer turns a retrieval outcome into the final reply: a static
// template when no response field exists for the category, the canned
// no-knowledge text when retrieval found nothing, or a generative draft
// with bounded retry on rate limiting. It never errors for expected
// operational conditions; everything comes back as a tagged draft.
type Composer struct {
	gen         domain.Generator
	templates   map[string]string
	opts        domain.GenerationOptions
	maxAttempts int
	backoffBase time.Duration
	sleep       func(time.Duration)
}

type Config struct {
	Templates   map[string]string
	Options     domain.GenerationOptions
	MaxAttempts int
	BackoffBase time.Duration
	// Sleep is the backoff wait; tests substitute it. Defaults to
	// time.Sleep.
	Sleep func(time.Duration)
}

func New(gen domain.Generator, cfg Config) *Composer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 5
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 5 * time.Second
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Composer{
		gen:         gen,
		templates:   cfg.Templates,
		opts:        cfg.Options,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		sleep:       cfg.Sleep,
	}
}

func (c *Composer) Compose(ctx context.Context, outcome domain.RetrievalOutcome, ticket domain.TicketContext) domain.ResponseDraft {
	// A candidate without any usable response field short-circuits to the
	// static template; the generative backend is never invoked here.
	if outcome.FieldMissing {
		if text, ok := c.templates[outcome.Category]; ok {
			log.Printf("compose ticket=%s source=template category=%s", ticket.TicketID, outcome.Category)
			return domain.ResponseDraft{Status: domain.DraftSuccess, Text: text, Source: "template"}
		}
		return domain.ResponseDraft{
			Status: domain.DraftError,
			Reason: fmt.Sprintf("no response field and no fallback template for category %q", outcome.Category),
			Source: "template",
		}
	}

	if !outcome.Result.Found {
		log.Printf("compose ticket=%s source=no_knowledge category=%s", ticket.TicketID, outcome.Category)
		return domain.ResponseDraft{Status: domain.DraftSuccess, Text: NoKnowledgeResponse, Source: "no_knowledge"}
	}

	prompt := buildPrompt(outcome, ticket)
	text, err := c.generateWithBackoff(ctx, prompt)
	if err != nil {
		return domain.ResponseDraft{Status: domain.DraftError, Reason: err.Error(), Source: "generated"}
	}
	log.Printf("compose ticket=%s source=generated category=%s size=%d", ticket.TicketID, outcome.Category, len(text))
	return domain.ResponseDraft{Status: domain.DraftSuccess, Text: text, Source: "generated"}
}

// generateWithBackoff retries rate-limited calls up to maxAttempts total,
// waiting base*2^k before the (k+1)-th attempt. Any other backend error
// aborts immediately.
func (c *Composer) generateWithBackoff(ctx context.Context, prompt string) (string, error) {
	delay := c.backoffBase
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		text, err := c.gen.Generate(ctx, prompt, c.opts)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, domain.ErrRateLimited) {
			return "", err
		}
		if attempt == c.maxAttempts-1 {
			break
		}
		log.Printf("compose rate limited attempt=%d retry_in=%s", attempt+1, delay)
		c.sleep(delay)
		delay *= 2
	}
	return "", fmt.Errorf("%w: gave up after %d rate-limited attempts", domain.ErrRetryExhausted, c.maxAttempts)
}

func buildPrompt(outcome domain.RetrievalOutcome, ticket domain.TicketContext) string {
	var b strings.Builder
	b.WriteString("You are a professional and empathetic customer support representative.\n")
	b.WriteString("Your goal is to provide clear, accurate, and helpful responses to customer inquiries.\n")
	b.WriteString("Always maintain a professional yet friendly tone and ensure all information is accurate.\n\n")

	b.WriteString("TICKET DETAILS:\n")
	b.WriteString("- Ticket ID: " + orDefault(ticket.TicketID, "Not provided") + "\n")
	b.WriteString("- Subject: " + orDefault(ticket.Subject, "Re: Your Inquiry") + "\n")
	if ticket.Status != "" {
		b.WriteString("- Status: " + ticket.Status + "\n")
	}
	if ticket.Body != "" {
		b.WriteString("- Customer Query: " + ticket.Body + "\n")
	}

	b.WriteString("\nKNOWLEDGE BASE CONTEXT:\n")
	b.WriteString(formatKnowledgeContext(outcome))

	b.WriteString(`
INSTRUCTIONS:
1. Carefully analyze the customer's query and the provided knowledge base context.
2. Generate a professional and helpful response that addresses all points in the customer's query.
3. If the information isn't available in the knowledge base, be honest and let the customer know you'll look into it.
4. Keep the response concise but thorough (under 600 characters).
5. Use proper email etiquette with appropriate greeting and closing.
6. If relevant, include next steps or additional resources.

RESPONSE:
`)
	return b.String()
}

func formatKnowledgeContext(outcome domain.RetrievalOutcome) string {
	var b strings.Builder
	if outcome.Response != "" {
		fmt.Fprintf(&b, "- %s: %s\n", outcome.MatchedField, outcome.Response)
	}

	keys := make([]string, 0, len(outcome.Result.Fields))
	for k := range outcome.Result.Fields {
		if k == outcome.MatchedField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(outcome.Result.Fields[k])
		if v == "" || strings.EqualFold(v, "nan") {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", k, v)
	}

	if b.Len() == 0 {
		return "No relevant information found in the knowledge base.\n"
	}
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
