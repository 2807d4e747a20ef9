package payment

import (
	"fmt"
	"strings"
)

// Providers report results with heterogeneous payload shapes. Field probes are
// tried in a fixed priority order and the first present value wins.
var (
	linkIDFields     = []string{"order_id", "orderId", "orderNumber", "transaction_id", "link_id", "linkId"}
	statusFields     = []string{"status", "payment_status", "result"}
	externalIDFields = []string{"transaction_id", "transactionId"}
	eventTypeFields  = []string{"event_type", "eventType"}
)

// successTokens is the case-insensitive allow-list of provider status values
// that count as a paid outcome. Everything else is a decline.
var successTokens = map[string]struct{}{
	"success":   {},
	"completed": {},
	"paid":      {},
	"approved":  {},
	"1":         {},
	"ok":        {},
}

// probe returns the first non-empty string value among the given field names.
func probe(payload map[string]interface{}, fields []string) (string, bool) {
	for _, field := range fields {
		v, ok := payload[field]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(stringify(v))
		if s != "" {
			return s, true
		}
	}
	return "", false
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; whole values print without decimals.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ExtractLinkID pulls the link identifier from a raw payload.
func ExtractLinkID(payload map[string]interface{}) (string, bool) {
	return probe(payload, linkIDFields)
}

// ExtractExternalPaymentID pulls the provider's own payment reference, if any.
func ExtractExternalPaymentID(payload map[string]interface{}) string {
	id, _ := probe(payload, externalIDFields)
	return id
}

// ExtractEventType pulls the event type, defaulting to "payment".
func ExtractEventType(payload map[string]interface{}) string {
	if et, ok := probe(payload, eventTypeFields); ok {
		return et
	}
	return "payment"
}

// IsSuccessOutcome interprets the payment result reported by the provider. A
// missing or unrecognized status is treated as a decline.
func IsSuccessOutcome(payload map[string]interface{}) bool {
	status, ok := probe(payload, statusFields)
	if !ok {
		return false
	}
	_, success := successTokens[strings.ToLower(status)]
	return success
}
