package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Channel - живой канал доставки одной клиентской сессии. Много каналов
// могут принадлежать одному пользователю (несколько устройств).
type Channel interface {
	Send(event any) error
	Close() error
}

// connChannel оборачивает websocket-соединение. Запись сериализуется
// мьютексом и ограничена дедлайном, чтобы мёртвый канал не задерживал
// рассылку остальным.
type connChannel struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu sync.Mutex
}

func NewChannel(conn *websocket.Conn, writeTimeout time.Duration) Channel {
	return &connChannel{conn: conn, writeTimeout: writeTimeout}
}

func (c *connChannel) Send(event any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(event)
}

func (c *connChannel) Close() error {
	return c.conn.Close()
}
