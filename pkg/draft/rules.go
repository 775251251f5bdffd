package draft

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	amountPattern   = regexp.MustCompile(`(?:[$€£]\s*)?(\d+(?:[.,]\d{1,2})?)\b`)
	merchantPattern = regexp.MustCompile(`(?i)(?:^|\s)(?:at|@)\s+([^\s,.;!?]+(?:\s+[^\s,.;!?]+)?)`)
)

// Words that mark a text as income. They are matched case-folded.
var incomeWords = []string{"salary", "income", "paycheck", "refund", "received", "got paid", "deposit"}

// Rule maps text matching a glob pattern to an envelope and merchant.
//
// Patterns are matched against the case-folded text, so "*coffee*" matches
// "Coffee at the station".
type Rule struct {
	Match    string `json:"match" example:"*coffee*"`     // Glob pattern
	Envelope string `json:"envelope" example:"Dining"`    // Envelope name to draft
	Merchant string `json:"merchant" example:"Starbucks"` // Merchant name to draft. Optional
}

// RuleDrafter is a local Drafter working with heuristics and match rules.
//
// Rules are applied in order, the first matching rule wins.
type RuleDrafter struct {
	Rules          []Rule
	PaymentMethods []string // Names of the payment methods that can be recognized
	Now            func() time.Time
}

var _ Drafter = (*RuleDrafter)(nil)

// NewRuleDrafter creates a RuleDrafter with the rules.
func NewRuleDrafter(rules []Rule, paymentMethods []string) *RuleDrafter {
	return &RuleDrafter{
		Rules:          rules,
		PaymentMethods: paymentMethods,
		Now:            time.Now,
	}
}

func (r *RuleDrafter) Draft(ctx context.Context, text string, envelopes []string) (Draft, error) {
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Draft{}, ErrEmptyText
	}

	folded := fold(text)
	d := Draft{
		Description: text,
		Type:        models.TransactionTypeExpense,
		Date:        r.date(folded),
	}

	score := 0.0

	if amount, ok := parseAmount(text); ok {
		d.Amount = &amount
		score += 0.4
	}

	for _, word := range incomeWords {
		if strings.Contains(folded, word) {
			d.Type = models.TransactionTypeIncome
			score += 0.1
			break
		}
	}

	if rule, ok := r.match(folded); ok {
		d.Merchant = rule.Merchant
		if name, ok := r.envelope(fold(rule.Envelope), envelopes); ok {
			d.Envelope = name
		}
	}

	if d.Envelope == "" {
		d.Envelope, _ = r.envelope(folded, envelopes)
	}

	if d.Envelope != "" {
		score += 0.3
	}

	if d.Merchant == "" {
		if m := merchantPattern.FindStringSubmatch(text); m != nil {
			d.Merchant = cases.Title(language.Und).String(m[1])
		}
	}

	if d.Merchant != "" {
		score += 0.2
	}

	for _, method := range r.PaymentMethods {
		if strings.Contains(folded, fold(method)) {
			d.PaymentMethod = method
			break
		}
	}

	d.Confidence = math.Min(1, math.Round(score*100)/100)
	return d, nil
}

// match returns the first rule matching the folded text.
func (r *RuleDrafter) match(folded string) (Rule, bool) {
	for _, rule := range r.Rules {
		if glob.Glob(fold(rule.Match), folded) {
			return rule, true
		}
	}

	return Rule{}, false
}

// envelope returns the envelope whose name occurs in the folded text. If
// multiple names occur, the longest one wins.
func (r *RuleDrafter) envelope(folded string, envelopes []string) (string, bool) {
	best := ""
	for _, name := range envelopes {
		n := fold(strings.TrimSpace(name))
		if n == "" || !strings.Contains(folded, n) {
			continue
		}

		if len(n) > len(fold(best)) {
			best = name
		}
	}

	return best, best != ""
}

// date returns the effective date of the draft, which is today unless the
// text mentions yesterday.
func (r *RuleDrafter) date(folded string) time.Time {
	clock := r.Now
	if clock == nil {
		clock = time.Now
	}

	now := clock().UTC()
	if strings.Contains(folded, "yesterday") {
		now = now.AddDate(0, 0, -1)
	}

	y, m, day := now.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// fold returns the case-folded string. Casers are stateful, so every call
// uses its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// parseAmount returns the first positive amount in the text. A comma is
// accepted as decimal separator.
func parseAmount(text string) (decimal.Decimal, bool) {
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		amount, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
		if err != nil || !amount.IsPositive() {
			continue
		}

		return amount, true
	}

	return decimal.Zero, false
}
