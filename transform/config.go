// Package transform converts records between the wire representation
// (snake_case keys, string dates) and the application representation
// (camelCase keys, time.Time dates). The request and response pipelines are
// structurally symmetric but opposite in casing direction.
package transform

// Record is the constrained shape all transforms operate over: a record of
// named fields, possibly nested.
type Record = map[string]any

// Date format selectors for Config.DateFormat. Any other non-empty value is
// treated as a token pattern supporting YYYY, MM, DD, HH, mm and ss.
const (
	FormatRFC3339    = "rfc3339"
	FormatUnixMillis = "unix"
)

// Config is a named bundle of field-level transform rules for one resource
// type. Field names are matched at every nesting level and independently of
// casing convention.
//
// When both ExcludeFields and IncludeFields are set, exclusion runs first
// and inclusion narrows the remainder.
type Config struct {
	Name string

	DateFields    []string
	NumberFields  []string
	BooleanFields []string
	ExcludeFields []string
	IncludeFields []string

	// DateFormat selects the outgoing date representation. Empty means RFC 3339.
	DateFormat string

	// StripNull drops keys whose value is nil after coercion.
	StripNull bool
	// StripEmpty drops keys holding empty strings or records that emptied
	// out during stripping.
	StripEmpty bool
}

// Named bundles. The set is closed: callers reference these vars directly,
// so an unknown bundle is a compile error rather than a runtime lookup.
var (
	User = Config{
		Name:          "user",
		DateFields:    []string{"createdAt", "updatedAt", "lastLoginAt", "dateOfBirth"},
		BooleanFields: []string{"isActive", "emailVerified", "mfaEnabled"},
		ExcludeFields: []string{"password", "confirmPassword"},
		StripNull:     true,
		StripEmpty:    true,
	}

	Invoice = Config{
		Name:          "invoice",
		DateFields:    []string{"invoiceDate", "dueDate", "paidAt", "createdAt", "updatedAt"},
		NumberFields:  []string{"subtotal", "taxAmount", "discountAmount", "total", "amountDue"},
		BooleanFields: []string{"isPaid", "isRecurring", "isOverdue"},
		StripNull:     true,
	}

	Account = Config{
		Name:          "account",
		DateFields:    []string{"openedAt", "closedAt", "createdAt"},
		NumberFields:  []string{"balance", "openingBalance", "creditLimit"},
		BooleanFields: []string{"isArchived", "isReconcilable"},
		StripNull:     true,
	}

	Transaction = Config{
		Name:          "transaction",
		DateFields:    []string{"transactionDate", "postedAt", "clearedAt"},
		NumberFields:  []string{"amount", "exchangeRate", "runningBalance"},
		BooleanFields: []string{"reconciled", "isPending"},
		StripNull:     true,
	}
)
