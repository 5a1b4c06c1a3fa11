package visit

import "time"

type Visit struct {
	ID         int        `db:"id" json:"id"`
	UserID     int        `db:"user_id" json:"user_id"`
	CheckInAt  time.Time  `db:"check_in_at" json:"check_in_at"`
	CheckOutAt *time.Time `db:"check_out_at" json:"check_out_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
