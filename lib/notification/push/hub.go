package push

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Conn соединение клиента, *websocket.Conn подходит без обёртки
type Conn interface {
	WriteJSON(v interface{}) error
}

type Provider interface {
	// AddClient регистрирует соединение, возвращает функцию отключения
	AddClient(userID uint, conn Conn) func()
	// Send false, если у пользователя нет открытых соединений
	Send(userID uint, msg any) bool
	IsConnected(userID uint) bool
}

var Instance Provider

func NewHandler() {
	Instance = NewProvider()
}

func NewProvider() Provider {
	return &impl{
		clients: map[uint]map[*session]struct{}{},
	}
}

type impl struct {
	mu sync.RWMutex
	// у пользователя может быть несколько вкладок
	clients map[uint]map[*session]struct{}
}

func (i *impl) AddClient(userID uint, conn Conn) func() {
	sess := newSession(userID, conn)
	i.mu.Lock()
	if i.clients[userID] == nil {
		i.clients[userID] = map[*session]struct{}{}
	}
	i.clients[userID][sess] = struct{}{}
	i.mu.Unlock()
	log.WithField("user_id", userID).Debug("подключен клиент уведомлений")

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			delete(i.clients[userID], sess)
			if len(i.clients[userID]) == 0 {
				delete(i.clients, userID)
			}
			i.mu.Unlock()
			sess.stop()
		})
	}
}

func (i *impl) Send(userID uint, msg any) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	sessions := i.clients[userID]
	for sess := range sessions {
		sess.enqueue(msg)
	}
	return len(sessions) > 0
}

func (i *impl) IsConnected(userID uint) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.clients[userID]) > 0
}

type session struct {
	conn   Conn
	sendCh chan any
	ctx    context.Context
	stop   func()
	logger *log.Entry
}

const sendBuffer = 16

func newSession(userID uint, conn Conn) *session {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		conn:   conn,
		sendCh: make(chan any, sendBuffer),
		ctx:    ctx,
		stop:   cancel,
		logger: log.WithField("user_id", userID),
	}
	go sess.startSend()
	return sess
}

// enqueue не блокирует отправителя: при переполненном буфере сообщение отбрасывается,
// клиент получит его из списка непрочитанных
func (s *session) enqueue(msg any) {
	select {
	case <-s.ctx.Done():
	case s.sendCh <- msg:
	default:
		s.logger.Warn("очередь отправки переполнена, сообщение пропущено")
	}
}

func (s *session) startSend() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.sendCh:
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.WithError(err).Error("ошибка отправки сообщения")
			}
		}
	}
}
