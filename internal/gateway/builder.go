package gateway

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/models"
)

// orderRefPrefix is fixed; uniqueness comes from the random suffix. The
// volume of checkout attempts makes collisions negligible, and the gateway
// treats the reference as opaque.
const orderRefPrefix = "ORD"

// txnDateTimeLayout is the gateway's required timestamp format.
const txnDateTimeLayout = "2006:01:02-15:04:05"

var (
	// ErrEmptyPrincipal means the intent carries no positive charge amount.
	ErrEmptyPrincipal = errors.New("payment intent has no positive principal amount")
	// ErrMissingOrderID means the intent was built without an order reference.
	ErrMissingOrderID = errors.New("payment intent has no order id")
)

// SignedRequest is a fully assembled, signed gateway request ready to submit
// as a form POST. Params excludes the signature field; mutating any value
// after signing invalidates Signature.
type SignedRequest struct {
	Endpoint       string
	Params         map[string]string
	CanonicalInput string
	SignatureField string
	Signature      string
}

// FormField is one hidden input of the outbound form.
type FormField struct {
	Name  string
	Value string
}

// FormFields returns every parameter in canonical name order with the
// signature appended last, matching what the canonical input was computed
// over plus the MAC itself.
func (r *SignedRequest) FormFields() []FormField {
	names := make([]string, 0, len(r.Params))
	for name := range r.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]FormField, 0, len(names)+1)
	for _, name := range names {
		fields = append(fields, FormField{Name: name, Value: r.Params[name]})
	}
	return append(fields, FormField{Name: r.SignatureField, Value: r.Signature})
}

// CanonicalInput derives the signature input from a parameter map: values of
// all non-empty parameters, ordered by parameter name, joined with "|". The
// signature field itself never participates.
func CanonicalInput(params map[string]string) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if name == SignatureField || value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]string, len(names))
	for i, name := range names {
		values[i] = params[name]
	}
	return strings.Join(values, "|")
}

// Builder assembles signed hosted-checkout requests from payment intents.
type Builder struct {
	cfg    config.GatewayConfig
	signer *Signer
	loc    *time.Location
	now    func() time.Time
}

// NewBuilder creates a request builder. It fails when the gateway timezone
// is unknown, since the gateway rejects requests whose txndatetime disagrees
// with the declared timezone.
func NewBuilder(cfg config.GatewayConfig, signer *Signer) (*Builder, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway timezone %q: %w", cfg.Timezone, err)
	}
	return &Builder{
		cfg:    cfg,
		signer: signer,
		loc:    loc,
		now:    time.Now,
	}, nil
}

// NewOrderRef generates an order reference: fixed prefix, random six-digit
// suffix.
func NewOrderRef() string {
	return fmt.Sprintf("%s%06d", orderRefPrefix, 100000+rand.Intn(900000))
}

// Build assembles and signs the full gateway parameter set for an intent.
// The charge amount is always the intent's principal, fixed to two decimal
// places; installment figures never enter the signed request.
func (b *Builder) Build(intent *models.PaymentIntent) (*SignedRequest, error) {
	if b.signer == nil {
		return nil, ErrNoSecret
	}
	if intent.OrderID == "" {
		return nil, ErrMissingOrderID
	}
	if !intent.PrincipalAmount.IsPositive() {
		return nil, ErrEmptyPrincipal
	}

	params := map[string]string{
		"hash_algorithm":     b.signer.Algorithm(),
		"storename":          b.cfg.StoreName,
		"timezone":           b.cfg.Timezone,
		"txndatetime":        b.now().In(b.loc).Format(txnDateTimeLayout),
		"txntype":            b.cfg.TxnType,
		"chargetotal":        intent.PrincipalAmount.StringFixed(2),
		"currency":           b.cfg.CurrencyNumeric,
		"responseSuccessURL": b.successURL(intent.OrderID),
		"responseFailURL":    b.failURL(),
		"oid":                intent.OrderID,
	}
	if intent.CustomerEmail != "" {
		params["email"] = intent.CustomerEmail
	}
	if intent.CustomerName != "" {
		params["bname"] = intent.CustomerName
	}
	for name, value := range b.cfg.ExtraParams {
		if name == SignatureField {
			continue
		}
		params[name] = value
	}

	canonical := CanonicalInput(params)

	return &SignedRequest{
		Endpoint:       b.cfg.Endpoint,
		Params:         params,
		CanonicalInput: canonical,
		SignatureField: SignatureField,
		Signature:      b.signer.Sign(canonical),
	}, nil
}

// successURL carries the order reference as a query parameter so the return
// resolver can recover it even when session storage is gone.
func (b *Builder) successURL(orderRef string) string {
	return appendQuery(b.cfg.SuccessReturnURL, url.Values{
		"status":  {"success"},
		"orderId": {orderRef},
	})
}

func (b *Builder) failURL() string {
	return appendQuery(b.cfg.FailReturnURL, url.Values{
		"status": {"failed"},
	})
}

func appendQuery(rawURL string, extra url.Values) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Configured URLs are validated at startup in practice; fall back to
		// naive concatenation rather than dropping the parameters.
		return rawURL + "?" + extra.Encode()
	}
	q := u.Query()
	for key, values := range extra {
		for _, value := range values {
			q.Set(key, value)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
