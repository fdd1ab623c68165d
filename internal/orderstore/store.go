// Package orderstore holds the gateway's in-process view of upcoming orders.
// Every change goes through a typed command and is fanned out to subscribers.
package orderstore

import (
	"slices"
	"sync"

	"mealplan-system/internal/aggregation"
	"mealplan-system/internal/orders"
)

type EventType string

const (
	EventReplaced      EventType = "replaced"
	EventAppended      EventType = "appended"
	EventStatusChanged EventType = "status_changed"
)

// Event describes one applied command. EmptiedGroups lists the groups that
// no longer hold any order after a status change.
type Event struct {
	Type          EventType              `json:"type"`
	Orders        []orders.Order         `json:"orders,omitempty"`
	Status        orders.Status          `json:"status,omitempty"`
	EmptiedGroups []aggregation.GroupKey `json:"emptiedGroups,omitempty"`
}

// ForCompany narrows the event to one company's orders and groups. It
// reports false when nothing of that company is left, except for a
// replace, which subscribers always need to see.
func (e Event) ForCompany(code string) (Event, bool) {
	out := e
	out.Orders = slices.DeleteFunc(slices.Clone(e.Orders), func(o orders.Order) bool { return o.Company.Code != code })
	out.EmptiedGroups = slices.DeleteFunc(slices.Clone(e.EmptiedGroups), func(k aggregation.GroupKey) bool { return k.CompanyCode != code })
	if e.Type == EventReplaced {
		return out, true
	}
	return out, len(out.Orders) > 0 || len(out.EmptiedGroups) > 0
}

type Store struct {
	mu     sync.RWMutex
	orders []orders.Order
	subs   map[int]chan Event
	nextID int
}

func New() *Store {
	return &Store{subs: make(map[int]chan Event)}
}

// Orders returns a copy of the current upcoming orders.
func (s *Store) Orders() []orders.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

func (s *Store) Groups() []aggregation.OrderGroup {
	return aggregation.GroupOrdersByCompanyAndDate(s.Orders())
}

// Replace swaps the whole collection, e.g. after a reload from the API.
func (s *Store) Replace(list []orders.Order) {
	s.mu.Lock()
	s.orders = slices.Clone(list)
	ev := Event{Type: EventReplaced, Orders: slices.Clone(list)}
	s.mu.Unlock()
	s.publish(ev)
}

// AppendOrders adds newly created orders, replacing any with the same id.
func (s *Store) AppendOrders(list []orders.Order) {
	if len(list) == 0 {
		return
	}
	s.mu.Lock()
	for _, o := range list {
		i := slices.IndexFunc(s.orders, func(x orders.Order) bool { return x.ID == o.ID })
		if i >= 0 {
			s.orders[i] = o
			continue
		}
		s.orders = append(s.orders, o)
	}
	ev := Event{Type: EventAppended, Orders: slices.Clone(list)}
	s.mu.Unlock()
	s.publish(ev)
}

// ApplyStatusChange moves the given orders to a terminal status and drops
// them from the upcoming view. Unknown ids are ignored.
func (s *Store) ApplyStatusChange(ids []string, status orders.Status) (Event, error) {
	if !status.Terminal() {
		return Event{}, orders.ErrInvalidTransition
	}

	s.mu.Lock()
	before := keys(s.orders)
	var moved []orders.Order
	kept := s.orders[:0:0]
	for _, o := range s.orders {
		if slices.Contains(ids, o.ID) {
			if !orders.CanTransition(o.Status, status) {
				s.mu.Unlock()
				return Event{}, orders.ErrInvalidTransition
			}
			o.Status = status
			moved = append(moved, o)
			continue
		}
		kept = append(kept, o)
	}
	s.orders = kept
	after := keys(kept)
	s.mu.Unlock()

	var emptied []aggregation.GroupKey
	for _, k := range before {
		if !slices.Contains(after, k) {
			emptied = append(emptied, k)
		}
	}
	ev := Event{Type: EventStatusChanged, Orders: moved, Status: status, EmptiedGroups: emptied}
	if len(moved) > 0 {
		s.publish(ev)
	}
	return ev, nil
}

// Subscribe returns a channel of future events and a cancel func. A
// subscriber that falls more than buffer events behind misses events.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func keys(list []orders.Order) []aggregation.GroupKey {
	out := make([]aggregation.GroupKey, 0)
	for _, g := range aggregation.GroupOrdersByCompanyAndDate(list) {
		out = append(out, g.Key())
	}
	return out
}
