package router

import (
	"context"
	"net/http"
	"time"
)

// Server - HTTP-сервер с уведомлением об остановке.
type Server struct {
	server *http.Server
	notify chan error
}

// NewServer создает и сразу запускает сервер.
func NewServer(handler http.Handler, address string) *Server {
	s := &Server{
		server: &http.Server{
			Handler:           handler,
			Addr:              address,
			ReadHeaderTimeout: 10 * time.Second,
		},
		notify: make(chan error, 1),
	}
	s.start()
	return s
}

func (s *Server) start() {
	go func() {
		s.notify <- s.server.ListenAndServe()
		close(s.notify)
	}()
}

// Notify возвращает канал, в который попадет ошибка остановки сервера.
func (s *Server) Notify() <-chan error {
	return s.notify
}

// Shutdown дожидается завершения текущих запросов.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
