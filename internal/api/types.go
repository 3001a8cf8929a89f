package api

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

// Transaction types as the server spells them.
const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
)

type (
	// DateTime is a timestamp serialized without a zone offset
	// ("2006-01-02T15:04:05"), the way the server emits LocalDateTime values.
	DateTime struct {
		time.Time
	}

	// Date is a calendar day serialized as "2006-01-02".
	Date struct {
		time.Time
	}

	User struct {
		ID        int64    `json:"id"`
		Username  string   `json:"username"`
		Email     string   `json:"email,omitempty"`
		FullName  string   `json:"fullName,omitempty"`
		CreatedAt DateTime `json:"createdAt,omitempty"`
	}

	Transaction struct {
		ID              int64    `json:"id"`
		UserID          int64    `json:"userId"`
		Amount          float64  `json:"amount"`
		Type            string   `json:"type"`
		Category        string   `json:"category"`
		Description     string   `json:"description"`
		Location        string   `json:"location"`
		TransactionDate DateTime `json:"transactionDate"`
		Fraudulent      bool     `json:"fraudulent"`
		FraudScore      float64  `json:"fraudScore"`
		RiskLevel       string   `json:"riskLevel,omitempty"`
	}

	FraudAlert struct {
		ID          int64        `json:"id"`
		Transaction *Transaction `json:"transaction,omitempty"`
		Message     string       `json:"message"`
		Severity    string       `json:"severity"`
		Resolved    bool         `json:"resolved"`
		CreatedAt   DateTime     `json:"createdAt"`
	}

	Subscription struct {
		ID           int64    `json:"id"`
		Merchant     string   `json:"merchant"`
		AvgAmount    float64  `json:"avgAmount"`
		LastPaidDate Date     `json:"lastPaidDate"`
		NextDueDate  Date     `json:"nextDueDate"`
		Status       string   `json:"status"`
		CreatedAt    DateTime `json:"createdAt"`
	}

	// CategoryAmount is one slice of a per-category monetary breakdown.
	CategoryAmount struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}

	// CategoryCount is one slice of a per-category event count.
	CategoryCount struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}

	// TimeSeriesPoint is one point of the spending trend series.
	TimeSeriesPoint struct {
		Period string  `json:"period"`
		Amount float64 `json:"amount"`
	}

	DashboardSummary struct {
		TotalIncome              float64           `json:"totalIncome"`
		TotalExpenses            float64           `json:"totalExpenses"`
		CurrentBalance           float64           `json:"currentBalance"`
		TotalFlaggedTransactions int64             `json:"totalFlaggedTransactions"`
		AverageFraudScore        float64           `json:"averageFraudScore"`
		SpendingByCategory       CategoryAmounts   `json:"spendingByCategory"`
		FraudByCategory          CategoryCounts    `json:"fraudByCategory"`
		SpendingTrends           []TimeSeriesPoint `json:"spendingTrends,omitempty"`
	}

	// TransactionRequest is the create-transaction payload.
	TransactionRequest struct {
		UserID          int64    `json:"userId"`
		Amount          float64  `json:"amount"`
		Type            string   `json:"type"`
		Category        string   `json:"category"`
		Description     string   `json:"description"`
		Location        string   `json:"location"`
		TransactionDate DateTime `json:"transactionDate"`
	}

	// DetectionResult is the subscription-detection summary.
	DetectionResult struct {
		Detected int64  `json:"detected"`
		Message  string `json:"message,omitempty"`
	}

	LoginResponse struct {
		Token      string `json:"token"`
		User       User   `json:"user"`
		DemoSeeded bool   `json:"demoSeeded"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyLocation    = errors.New("empty location")
	ErrInvalidDate      = errors.New("invalid transaction date")
)

// Validate checks the fields the entry form already enforces. Deeper
// validation is the server's responsibility.
func (r TransactionRequest) Validate() error {
	if r.Amount == 0 {
		return ErrInvalidAmount
	}
	if r.Type != TypeIncome && r.Type != TypeExpense {
		return ErrInvalidType
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(r.Location) == "" {
		return ErrEmptyLocation
	}
	if r.TransactionDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

const (
	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
)

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(d.Format(dateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	// Fractional seconds and plain dates both occur in server payloads.
	for _, layout := range []string{dateTimeLayout, "2006-01-02T15:04:05.999999999", time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return &time.ParseError{Layout: dateTimeLayout, Value: s}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// CategoryAmounts is a category breakdown presented as a list of pairs. The
// server emits a keyed object ({"groceries": 12.5, ...}); decoding converts it
// to a list sorted by descending amount, ties broken by category name. A list
// of pairs on the wire is accepted as-is.
type CategoryAmounts []CategoryAmount

func (c *CategoryAmounts) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*c = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []CategoryAmount
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}
	var keyed map[string]float64
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	list := make([]CategoryAmount, 0, len(keyed))
	for category, amount := range keyed {
		list = append(list, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Amount != list[j].Amount {
			return list[i].Amount > list[j].Amount
		}
		return list[i].Category < list[j].Category
	})
	*c = list
	return nil
}

// CategoryCounts mirrors CategoryAmounts for count-valued breakdowns.
type CategoryCounts []CategoryCount

func (c *CategoryCounts) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*c = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []CategoryCount
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}
	var keyed map[string]int64
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	list := make([]CategoryCount, 0, len(keyed))
	for category, count := range keyed {
		list = append(list, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Category < list[j].Category
	})
	*c = list
	return nil
}
