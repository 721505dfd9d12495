package validate

import (
	"regexp"
	"strconv"
	"strings"

	"chidi/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	// E.164 or a Nigerian local number (0803...).
	rePhone = regexp.MustCompile(`^(\+?[1-9]\d{6,14}|0\d{9,10})$`)
)

const (
	maxName  = 80
	maxText  = 500
	maxStock = 1_000_000
	maxQty   = 1000
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// OptionalEmail accepts the empty string.
func OptionalEmail(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", true
	}
	return Email(s)
}

// Phone strips spaces and dashes before matching.
func Phone(s string) (string, bool) {
	s = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
	return s, rePhone.MatchString(s)
}

// ID parses a positive integer resource id.
func ID(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxName {
		return "", false
	}
	return s, true
}

// Text trims free text and reports whether it fits.
func Text(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= maxText
}

func Stock(n int) bool { return n >= 0 && n <= maxStock }

func Qty(n int) bool { return n >= 1 && n <= maxQty }

func CustomerStatus(s string) (domain.CustomerStatus, bool) {
	switch st := domain.CustomerStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case domain.CustomerActive, domain.CustomerInactive, domain.CustomerVIP:
		return st, true
	}
	return "", false
}

func OrderStatus(s string) (domain.OrderStatus, bool) {
	switch st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case domain.OrderPending, domain.OrderConfirmed, domain.OrderProcessing,
		domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled:
		return st, true
	}
	return "", false
}

// PaymentStatus accepts the legacy "unpaid" as pending.
func PaymentStatus(s string) (domain.PaymentStatus, bool) {
	switch st := domain.PaymentStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case domain.PaymentPaid, domain.PaymentPending, domain.PaymentFailed, domain.PaymentRefunded:
		return st, true
	case "unpaid":
		return domain.PaymentPending, true
	}
	return "", false
}

func Priority(s string) (domain.Priority, bool) {
	switch p := domain.Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		return p, true
	}
	return "", false
}

// Password enforces a length window and mixed character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
