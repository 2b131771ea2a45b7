package i2c

import "sync"

// Transaction is one recorded bus transaction.
type Transaction struct {
	Addr  uint16
	Write []byte
	Read  int // bytes requested
}

// FakeBus records transactions and answers reads from a queue.
type FakeBus struct {
	mu sync.Mutex

	// Txs contains every transaction, including failed ones.
	Txs []Transaction

	// Responses are consumed one per read; a missing response reads zeros.
	Responses [][]byte

	// Err, if set, is returned by every transaction.
	Err error

	Closed bool
}

// Tx records the transaction and copies the next queued response into r.
func (f *FakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Txs = append(f.Txs, Transaction{Addr: addr, Write: append([]byte(nil), w...), Read: len(r)})
	if f.Err != nil {
		return f.Err
	}
	if len(r) > 0 {
		for i := range r {
			r[i] = 0
		}
		if len(f.Responses) > 0 {
			copy(r, f.Responses[0])
			f.Responses = f.Responses[1:]
		}
	}
	return nil
}

// Writes returns the payload of every write transaction, in order.
func (f *FakeBus) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, tx := range f.Txs {
		if len(tx.Write) > 0 {
			out = append(out, tx.Write)
		}
	}
	return out
}

// Close marks the bus closed.
func (f *FakeBus) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Reset clears recorded transactions.
func (f *FakeBus) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Txs = nil
	f.Responses = nil
	f.Err = nil
	f.Closed = false
}
