package orders

type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusDelivered  Status = "DELIVERED"
	StatusArchived   Status = "ARCHIVED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusDelivered, StatusArchived, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s.Valid() && s != StatusProcessing
}

// CanTransition reports whether an order may move from one status to another.
// Only PROCESSING orders move, and only into one of the terminal states.
func CanTransition(from, to Status) bool {
	if from != StatusProcessing {
		return false
	}
	return to.Terminal()
}

// AllProcessing reports whether every order is still PROCESSING. Batch
// deliver and archive actions are offered only when this holds.
func AllProcessing(list []Order) bool {
	if len(list) == 0 {
		return false
	}
	for _, o := range list {
		if o.Status != StatusProcessing {
			return false
		}
	}
	return true
}
