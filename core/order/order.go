package order

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fitzone/fitzone/random"
)

type Status string

const (
	Pending    Status = "pending"
	Confirmed  Status = "confirmed"
	Processing Status = "processing"
	Completed  Status = "completed"
	Cancelled  Status = "cancelled"
)

// transitions holds the reachable next statuses. Completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	Pending:    {Confirmed, Processing, Completed, Cancelled},
	Confirmed:  {Processing, Completed, Cancelled},
	Processing: {Completed, Cancelled},
	Completed:  {},
	Cancelled:  {},
}

func (s Status) CanBecome(next Status) bool {
	for _, allowed := range transitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Cancellable reports whether the dedicated cancel operation applies.
func (s Status) Cancellable() bool {
	return s == Pending || s == Confirmed
}

type Order struct {
	ID        string `json:"orderId" db:"order_id"`
	UserID    string `json:"userId" db:"user_id"`
	Status    Status `json:"status" db:"status"`
	Method    string `json:"paymentMethod" db:"payment_method"`
	Amount
	Billing
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Items   []Item    `json:"items,omitempty" db:"-"`
	History []History `json:"history,omitempty" db:"-"`
}

type Amount struct {
	Subtotal      int `json:"subtotal" db:"subtotal"`
	ProcessingFee int `json:"processingFee" db:"processing_fee"`
	Tax           int `json:"tax" db:"tax"`
	Discount      int `json:"discount" db:"discount"`
	Total         int `json:"total" db:"total"`
}

type Billing struct {
	FirstName string `json:"firstName" db:"first_name" validate:"required"`
	LastName  string `json:"lastName" db:"last_name" validate:"required"`
	Email     string `json:"email" db:"email" validate:"required,email"`
	Phone     string `json:"phone" db:"phone" validate:"required,min=10,max=15"`
	Address   string `json:"address" db:"address"`
	City      string `json:"city" db:"city"`
	State     string `json:"state" db:"state"`
	ZipCode   string `json:"zipCode" db:"zip_code"`
}

type Item struct {
	OrderID   string    `json:"-" db:"order_id"`
	ProgramID string    `json:"programId" db:"program_id"`
	Type      string    `json:"type" db:"item_type"`
	Price     int       `json:"price" db:"price"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// History is one append-only entry of the order's status trail. The
// latest entry always matches the order's current status.
type History struct {
	OrderID   string    `json:"-" db:"order_id"`
	Status    Status    `json:"status" db:"status"`
	Note      string    `json:"note" db:"note"`
	Actor     string    `json:"actor" db:"actor"`
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}

type OrderNew struct {
	Items   []ItemNew  `json:"items" validate:"required,min=1,dive"`
	Billing Billing    `json:"billing"`
	Payment PaymentNew `json:"payment"`
}

type ItemNew struct {
	ProgramID string `json:"programId" validate:"required,uuid4"`
	Type      string `json:"type" validate:"omitempty,oneof=program membership"`
	Price     int    `json:"price" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type PaymentNew struct {
	Method string `json:"method" validate:"required,oneof=card upi wallet"`
}

type StatusUp struct {
	Status Status `json:"status" validate:"required,oneof=pending confirmed processing completed cancelled"`
	Note   string `json:"note"`
}

type CancelReq struct {
	Reason string `json:"reason"`
}

// Summary is the shape returned on creation and status changes.
type Summary struct {
	OrderID   string    `json:"orderId"`
	Status    Status    `json:"status"`
	Total     int       `json:"total"`
	Items     []Item    `json:"items,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GenerateID builds a human-quotable order identifier.
func GenerateID() string {
	ts := strconv.FormatInt(time.Now().UTC().UnixMilli(), 36)
	return fmt.Sprintf("FIT-%s-%s", strings.ToUpper(ts), strings.ToUpper(random.String(6)))
}
