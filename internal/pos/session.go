package pos

import "sync"

// SessionStore guarda el carrito en curso de cada terminal POS, uno por
// trabajador. Estado en memoria del proceso: se pierde al reiniciar, igual
// que una venta a medio armar en la caja.
type SessionStore struct {
	mu    sync.Mutex
	carts map[uint]*Cart
}

func NewSessionStore() *SessionStore {
	return &SessionStore{carts: make(map[uint]*Cart)}
}

// With ejecuta fn con el carrito del trabajador bajo el lock del store.
func (s *SessionStore) With(workerID uint, fn func(*Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[workerID]
	if !ok {
		cart = NewCart()
		s.carts[workerID] = cart
	}
	return fn(cart)
}

// Drop descarta el carrito del trabajador (cierre de turno).
func (s *SessionStore) Drop(workerID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, workerID)
}
