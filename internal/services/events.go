package services

import "sync"

// Subscribe merges ledger and price cache notifications into one stream.
// The stream ends when cancel is called or both sources close.
func (s *trackerService) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ledgerCh, cancelLedger := s.ledger.Subscribe(buffer)
	priceCh, cancelPrices := s.prices.Subscribe(buffer)

	out := make(chan Event, buffer)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for ledgerCh != nil || priceCh != nil {
			var ev Event
			select {
			case <-done:
				return
			case le, ok := <-ledgerCh:
				if !ok {
					ledgerCh = nil
					continue
				}
				ev = Event{Type: EventTypeLedger, Ledger: &le}
			case pe, ok := <-priceCh:
				if !ok {
					priceCh = nil
					continue
				}
				ev = Event{Type: EventTypePrices}
				if pe.Snapshot != nil {
					last := pe.Snapshot.LastUpdate
					ev.LastUpdate = &last
				}
			}
			select {
			case out <- ev:
			default:
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			cancelLedger()
			cancelPrices()
		})
	}
}
