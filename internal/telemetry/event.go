package telemetry

import "time"

type EventType string

const (
	EventDropCollected      EventType = "drop_collected"
	EventPurchase           EventType = "purchase"
	EventSale               EventType = "sale"
	EventBankDeposit        EventType = "bank_deposit"
	EventBankWithdraw       EventType = "bank_withdraw"
	EventInterestPaid       EventType = "interest_paid"
	EventBottlesProduced    EventType = "bottles_produced"
	EventMarketEventStarted EventType = "market_event_started"
	EventMarketEventEnded   EventType = "market_event_ended"
	EventSaveImported       EventType = "save_imported"
	EventAdminGrant         EventType = "admin_grant"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
