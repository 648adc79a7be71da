package gateway

import (
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"storefront/config"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		Endpoint:         "https://gateway.example.com/processing",
		StoreName:        "8125000000072",
		SharedSecret:     "shared-secret",
		HashAlgorithm:    "HMACSHA256",
		Timezone:         "Asia/Kolkata",
		TxnType:          "sale",
		CurrencyNumeric:  "356",
		CurrencyAlpha:    "INR",
		SuccessReturnURL: "https://shop.example.com/payment/return",
		FailReturnURL:    "https://shop.example.com/payment/return",
		ExtraParams: map[string]string{
			"checkoutoption": "combinedpage",
			"language":       "en_US",
		},
	}
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	signer, err := NewSigner("HMACSHA256", "shared-secret")
	require.NoError(t, err)

	builder, err := NewBuilder(testGatewayConfig(), signer)
	require.NoError(t, err)

	// 09:00:05 UTC is 14:30:05 in the gateway's timezone.
	builder.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 5, 0, time.UTC)
	}
	return builder
}

func testIntent() *models.PaymentIntent {
	return &models.PaymentIntent{
		OrderID:         "ORD123456",
		PrincipalAmount: decimal.RequireFromString("5219"),
		CurrencyNumeric: "356",
		CurrencyAlpha:   "INR",
		CustomerEmail:   "buyer@example.com",
		CustomerName:    "A Buyer",
	}
}

func TestCanonicalInputOrderAndExclusions(t *testing.T) {
	params := map[string]string{
		"zulu":         "3",
		"alpha":        "1",
		"mike":         "2",
		"empty":        "",
		SignatureField: "should-not-appear",
	}

	assert.Equal(t, "1|2|3", CanonicalInput(params))
}

func TestCanonicalInputDeterministic(t *testing.T) {
	params := map[string]string{"b": "two", "a": "one", "c": "three"}
	assert.Equal(t, CanonicalInput(params), CanonicalInput(params))
}

func TestBuildParams(t *testing.T) {
	builder := newTestBuilder(t)

	signed, err := builder.Build(testIntent())
	require.NoError(t, err)

	assert.Equal(t, "HMACSHA256", signed.Params["hash_algorithm"])
	assert.Equal(t, "8125000000072", signed.Params["storename"])
	assert.Equal(t, "Asia/Kolkata", signed.Params["timezone"])
	assert.Equal(t, "2025:03:10-14:30:05", signed.Params["txndatetime"])
	assert.Equal(t, "sale", signed.Params["txntype"])
	assert.Equal(t, "5219.00", signed.Params["chargetotal"])
	assert.Equal(t, "356", signed.Params["currency"])
	assert.Equal(t, "buyer@example.com", signed.Params["email"])
	assert.Equal(t, "A Buyer", signed.Params["bname"])
	assert.Equal(t, "ORD123456", signed.Params["oid"])
	assert.Equal(t, "combinedpage", signed.Params["checkoutoption"])
	assert.Equal(t, "en_US", signed.Params["language"])

	// The signature never appears among the signed parameters.
	_, present := signed.Params[SignatureField]
	assert.False(t, present)
	assert.NotEmpty(t, signed.Signature)
}

func TestBuildReturnURLs(t *testing.T) {
	builder := newTestBuilder(t)

	signed, err := builder.Build(testIntent())
	require.NoError(t, err)

	successURL, err := url.Parse(signed.Params["responseSuccessURL"])
	require.NoError(t, err)
	assert.Equal(t, "success", successURL.Query().Get("status"))
	assert.Equal(t, "ORD123456", successURL.Query().Get("orderId"))

	failURL, err := url.Parse(signed.Params["responseFailURL"])
	require.NoError(t, err)
	assert.Equal(t, "failed", failURL.Query().Get("status"))
	assert.Empty(t, failURL.Query().Get("orderId"))
}

func TestBuildSignatureDeterminism(t *testing.T) {
	builder := newTestBuilder(t)

	first, err := builder.Build(testIntent())
	require.NoError(t, err)
	second, err := builder.Build(testIntent())
	require.NoError(t, err)

	assert.Equal(t, first.CanonicalInput, second.CanonicalInput)
	assert.Equal(t, first.Signature, second.Signature)

	// Changing any single parameter changes the signature.
	changed := testIntent()
	changed.PrincipalAmount = decimal.RequireFromString("5219.01")
	third, err := builder.Build(changed)
	require.NoError(t, err)
	assert.NotEqual(t, first.Signature, third.Signature)
}

func TestBuildOmitsEmptyCustomerFields(t *testing.T) {
	builder := newTestBuilder(t)

	intent := testIntent()
	intent.CustomerEmail = ""
	signed, err := builder.Build(intent)
	require.NoError(t, err)

	_, present := signed.Params["email"]
	assert.False(t, present)
	assert.NotContains(t, signed.CanonicalInput, "buyer@example.com")
}

func TestBuildValidation(t *testing.T) {
	builder := newTestBuilder(t)

	missing := testIntent()
	missing.OrderID = ""
	_, err := builder.Build(missing)
	assert.ErrorIs(t, err, ErrMissingOrderID)

	zero := testIntent()
	zero.PrincipalAmount = decimal.Zero
	_, err = builder.Build(zero)
	assert.ErrorIs(t, err, ErrEmptyPrincipal)
}

func TestFormFieldsSignatureLast(t *testing.T) {
	builder := newTestBuilder(t)

	signed, err := builder.Build(testIntent())
	require.NoError(t, err)

	fields := signed.FormFields()
	require.NotEmpty(t, fields)
	assert.Equal(t, SignatureField, fields[len(fields)-1].Name)
	assert.Equal(t, signed.Signature, fields[len(fields)-1].Value)

	// All other fields arrive in canonical name order.
	for i := 1; i < len(fields)-1; i++ {
		assert.Less(t, fields[i-1].Name, fields[i].Name)
	}
}

func TestRenderForm(t *testing.T) {
	builder := newTestBuilder(t)

	signed, err := builder.Build(testIntent())
	require.NoError(t, err)

	html, err := RenderForm(signed)
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, `action="https://gateway.example.com/processing"`)
	assert.Contains(t, page, `name="chargetotal" value="5219.00"`)
	assert.Contains(t, page, `name="`+SignatureField+`"`)
	assert.Contains(t, page, "document.getElementById('paymentForm').submit()")
}

func TestNewOrderRef(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD\d{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref := NewOrderRef()
		assert.True(t, pattern.MatchString(ref), "unexpected order ref %s", ref)
		assert.True(t, strings.HasPrefix(ref, "ORD"))
		seen[ref] = true
	}
	// Random suffixes: repeated generation should not be constant.
	assert.Greater(t, len(seen), 1)
}
