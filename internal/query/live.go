package query

import (
	"sync/atomic"

	"docsearch/internal/index"
)

var _ Service = (*Live)(nil)

// Live forwards to a service that can be replaced wholesale while searches
// are running, e.g. after the documentation set was rebuilt. Decorators are
// wrapped around the Live value once and survive every swap.
type Live struct {
	cur atomic.Pointer[holder]
}

type holder struct{ svc Service }

// NewLive returns a Live forwarding to svc.
func NewLive(svc Service) *Live {
	l := &Live{}
	l.Swap(svc)
	return l
}

// Swap replaces the forwarded service.
func (l *Live) Swap(svc Service) {
	l.cur.Store(&holder{svc: svc})
}

func (l *Live) Search(text string) []index.Entry {
	return l.cur.Load().svc.Search(text)
}
