package remote

import "sync"

// Hub mantém os inscritos de um canal de autenticação.
// Handlers são chamados de forma síncrona, fora do lock do hub.
type Hub struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]AuthHandler
}

type hubSubscription struct {
	hub  *Hub
	id   int
	once sync.Once
}

func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.handlers, s.id)
		s.hub.mu.Unlock()
	})
}

// Subscribe registra handler e devolve o token de cancelamento.
func (h *Hub) Subscribe(handler AuthHandler) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handlers == nil {
		h.handlers = make(map[int]AuthHandler)
	}
	h.nextID++
	h.handlers[h.nextID] = handler
	return &hubSubscription{hub: h, id: h.nextID}
}

// Emit notifica todos os inscritos.
func (h *Hub) Emit(event AuthEvent, session *Session) {
	h.mu.Lock()
	handlers := make([]AuthHandler, 0, len(h.handlers))
	for _, fn := range h.handlers {
		handlers = append(handlers, fn)
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		fn(event, session)
	}
}

// Len devolve o número de inscritos.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}
