package contracts

import "time"

// AlertType tags what triggered an alert. Each type has its own
// deduplication window: within the window at most one alert may exist per
// (user, type, subject) triple.
type AlertType string

const (
	AlertStrategyMatch AlertType = "strategy_match"
	AlertScore         AlertType = "score_alert"
	AlertDividend      AlertType = "dividend_alert"
)

// DedupWindow returns the minimum interval between two alerts of this type
// for the same user and subject.
func (t AlertType) DedupWindow() time.Duration {
	switch t {
	case AlertStrategyMatch:
		return 24 * time.Hour
	case AlertScore:
		return 7 * 24 * time.Hour
	case AlertDividend:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// AlertStatus tracks delivery and read state. The generator only ever
// creates Pending alerts; later transitions happen through user actions.
type AlertStatus string

const (
	AlertPending   AlertStatus = "pending"
	AlertSent      AlertStatus = "sent"
	AlertRead      AlertStatus = "read"
	AlertDismissed AlertStatus = "dismissed"
)

// Alert is a notification record produced by the alert generator.
// Creation is append-only; the generator never merges or updates alerts.
type Alert struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	StrategyID *int64 `json:"strategy_id,omitempty"`
	StockID    *int64 `json:"stock_id,omitempty"`

	Type    AlertType   `json:"type"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
	Status  AlertStatus `json:"status"`

	Ticker    string   `json:"ticker,omitempty"`
	StockName string   `json:"stock_name,omitempty"`
	Score     *float64 `json:"score,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
