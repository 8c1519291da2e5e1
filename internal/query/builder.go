package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validation failures. All fail before any statement is built or executed
// and map to caller errors at the HTTP boundary.
var (
	ErrInvalidMetric      = errors.New("invalid metric")
	ErrInvalidGroupBy     = errors.New("invalid group_by field")
	ErrInvalidFilterField = errors.New("invalid filter field")
	ErrInvalidFilterOp    = errors.New("invalid filter operator")
	ErrInvalidPropertyKey = errors.New("invalid property key")
	ErrInvalidOrderBy     = errors.New("invalid order_by field")
)

const (
	// MaxLimit caps row counts regardless of caller input.
	MaxLimit     = 1000
	DefaultLimit = 100

	// DefaultPeriodDays is the trailing window applied when the caller
	// omits a date range.
	DefaultPeriodDays = 7

	propertyPrefix = "properties."
)

// Property keys are interpolated into the generated predicate, so they are
// held to a strict pattern; everything else is parameterized.
var propertyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,128}$`)

// ValidatePropertyKey checks a property key against the allowed pattern
// (letters, digits, underscore, at most 128 characters).
func ValidatePropertyKey(key string) error {
	if !propertyKeyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidPropertyKey, key)
	}
	return nil
}

// The allow-listed vocabulary. Requests are validated against these closed
// sets before any SQL is assembled; nothing caller-controlled reaches the
// statement text except validated property keys.
var metricExprs = map[string]string{
	"event_count":   "COUNT(*)",
	"unique_users":  "COUNT(DISTINCT e.user_id)",
	"session_count": "COUNT(DISTINCT e.session_id)",
	"bounce_rate":   "ROUND(COALESCE(CAST(COUNT(DISTINCT CASE WHEN s.bounce = 1 THEN e.session_id END) AS REAL) / NULLIF(COUNT(DISTINCT e.session_id), 0), 0), 3)",
	"avg_duration":  "ROUND(COALESCE(AVG(s.duration), 0))",
}

// metrics that read session columns and require the join
var sessionMetrics = map[string]bool{
	"bounce_rate":  true,
	"avg_duration": true,
}

var groupExprs = map[string]string{
	"event":      "e.event_name",
	"date":       "e.date",
	"user_id":    "e.user_id",
	"session_id": "e.session_id",
}

var filterFields = map[string]string{
	"event":   "e.event_name",
	"user_id": "e.user_id",
	"date":    "e.date",
}

var operators = map[string]string{
	"eq":  "=",
	"neq": "!=",
	"gt":  ">",
	"lt":  "<",
	"gte": ">=",
	"lte": "<=",
}

// Filter is one caller-supplied predicate.
type Filter struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Request is the flexible query endpoint's request shape.
type Request struct {
	ProjectID string   `json:"project" binding:"required"`
	Metrics   []string `json:"metrics"`
	GroupBy   []string `json:"group_by"`
	Filters   []Filter `json:"filters"`
	DateFrom  string   `json:"date_from"`
	DateTo    string   `json:"date_to"`
	OrderBy   string   `json:"order_by"`
	Order     string   `json:"order"`
	Limit     int      `json:"limit"`
}

// Built is a validated, executable query with the resolved request echoed
// back for caller verification.
type Built struct {
	SQL      string
	Args     []any
	DateFrom string
	DateTo   string
	Metrics  []string
	GroupBy  []string
}

// DefaultPeriod fills an absent date range with the trailing
// DefaultPeriodDays days through today (UTC).
func DefaultPeriod(dateFrom, dateTo string) (string, string) {
	now := time.Now().UTC()
	if dateTo == "" {
		dateTo = now.Format("2006-01-02")
	}
	if dateFrom == "" {
		dateFrom = now.AddDate(0, 0, -DefaultPeriodDays).Format("2006-01-02")
	}
	return dateFrom, dateTo
}

// Build validates the request against the allow-listed vocabulary and
// assembles the aggregate statement.
func Build(req Request) (*Built, error) {
	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = []string{"event_count"}
	}

	needSessions := false
	for _, m := range metrics {
		if _, ok := metricExprs[m]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMetric, m)
		}
		if sessionMetrics[m] {
			needSessions = true
		}
	}
	for _, g := range req.GroupBy {
		if _, ok := groupExprs[g]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidGroupBy, g)
		}
	}

	dateFrom, dateTo := DefaultPeriod(req.DateFrom, req.DateTo)

	selects := make([]string, 0, len(req.GroupBy)+len(metrics))
	for _, g := range req.GroupBy {
		selects = append(selects, fmt.Sprintf("%s AS %s", groupExprs[g], g))
	}
	for _, m := range metrics {
		selects = append(selects, fmt.Sprintf("%s AS %s", metricExprs[m], m))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM events e")
	if needSessions {
		sb.WriteString(" LEFT JOIN sessions s ON s.session_id = e.session_id")
	}
	sb.WriteString(" WHERE e.project_id = ? AND e.date >= ? AND e.date <= ?")
	args := []any{req.ProjectID, dateFrom, dateTo}

	for _, f := range req.Filters {
		op, ok := operators[f.Op]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilterOp, f.Op)
		}

		var expr string
		switch {
		case strings.HasPrefix(f.Field, propertyPrefix):
			key := strings.TrimPrefix(f.Field, propertyPrefix)
			if err := ValidatePropertyKey(key); err != nil {
				return nil, err
			}
			expr = fmt.Sprintf("json_extract(e.properties, '$.%s')", key)
		default:
			expr, ok = filterFields[f.Field]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidFilterField, f.Field)
			}
		}

		sb.WriteString(fmt.Sprintf(" AND %s %s ?", expr, op))
		args = append(args, f.Value)
	}

	if len(req.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(req.GroupBy, ", "))
	}

	orderBy := req.OrderBy
	if orderBy == "" {
		orderBy = metrics[0]
	}
	if !contains(metrics, orderBy) && !contains(req.GroupBy, orderBy) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderBy, orderBy)
	}
	direction := "DESC"
	if strings.EqualFold(req.Order, "asc") {
		direction = "ASC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s", orderBy, direction))

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	sb.WriteString(" LIMIT ?")
	args = append(args, limit)

	return &Built{
		SQL:      sb.String(),
		Args:     args,
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Metrics:  metrics,
		GroupBy:  req.GroupBy,
	}, nil
}

// IsValidation reports whether err is one of the builder's caller errors.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidMetric,
		ErrInvalidGroupBy,
		ErrInvalidFilterField,
		ErrInvalidFilterOp,
		ErrInvalidPropertyKey,
		ErrInvalidOrderBy,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
