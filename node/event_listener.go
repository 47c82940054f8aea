package node

import "time"

type RequestListener interface {
	OnRequestHandled(route string, status int, took time.Duration)
}

type SelectiveListener struct {
	OnRequestHandledCb func(route string, status int, took time.Duration)
}

func (l *SelectiveListener) OnRequestHandled(route string, status int, took time.Duration) {
	if l.OnRequestHandledCb != nil {
		l.OnRequestHandledCb(route, status, took)
	}
}
