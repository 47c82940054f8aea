package outcall

import "time"

type EventListener interface {
	OnCall(network, function string, took time.Duration, err error)
	OnResponse(host string, status int, took time.Duration)
}

type SelectiveListener struct {
	OnCallCb     func(network, function string, took time.Duration, err error)
	OnResponseCb func(host string, status int, took time.Duration)
}

func (l *SelectiveListener) OnCall(network, function string, took time.Duration, err error) {
	if l.OnCallCb != nil {
		l.OnCallCb(network, function, took, err)
	}
}

func (l *SelectiveListener) OnResponse(host string, status int, took time.Duration) {
	if l.OnResponseCb != nil {
		l.OnResponseCb(host, status, took)
	}
}
